package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/smartstore/internal/cart"
	"github.com/smartstore/smartstore/internal/webserver"
)

func registerCartRoutes() {
	webserver.ApiGET("/cart", getDraftCart)
	webserver.ApiPOST("/cart", saveDraftCart)
}

type draftCartPayload struct {
	Items []cart.Item `json:"items"`
}

// getDraftCart returns the caller's draft cart. Purely advisory: nothing here
// is validated against stock or the catalog.
func getDraftCart(c echo.Context) error {
	ident := webserver.GetIdentity(c)
	items := webserver.GetApp(c).Drafts().Get(ident.ID)
	return ok(c, echo.Map{"items": items})
}

// saveDraftCart replaces the caller's draft wholesale.
func saveDraftCart(c echo.Context) error {
	var payload draftCartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart items", nil)
	}
	ident := webserver.GetIdentity(c)
	webserver.GetApp(c).Drafts().Put(ident.ID, payload.Items)
	return ok(c, echo.Map{"items": payload.Items})
}
