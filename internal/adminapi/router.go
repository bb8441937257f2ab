package adminapi

// InitRouter registers every admin API route against the web server.
func InitRouter() {
	registerAuthRoutes()
	registerStaffRoutes()
	registerCategoryRoutes()
	registerProductRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
}
