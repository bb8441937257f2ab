package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOprLog{},
	// Staff
	&StaffType{},
	&Staff{},
	// Catalog
	&Category{},
	&SubCategory{},
	&Product{},
	// Sales
	&Sale{},
	&Transaction{},
}
