// internal/httpserver/openapi.go
//
// OpenAPI 3 document served at /openapi.json and rendered by the /docs UI.
// Keep one operation per route registered in server.go and routes_round.go.

package httpserver

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type DebugCatalogResponse struct {
	Cards    int `json:"cards"`
	Chains   int `json:"chains"`
	Sessions int `json:"sessions"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "QGIS card game API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Rebuild a QGIS processing chain by finding its hidden card.")

	// GET /health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/health")
	getHealth.SetSummary("Health check")
	getHealth.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHealth)

	// GET /drawer
	getDrawer, _ := r.NewOperationContext(http.MethodGet, "/drawer")
	getDrawer.SetSummary("Card drawer")
	getDrawer.SetDescription("Lists every card of the catalog, one section per category.")
	getDrawer.AddRespStructure(DrawerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getDrawer)

	// POST /round/new
	postNew, _ := r.NewOperationContext(http.MethodPost, "/round/new")
	postNew.SetSummary("Start a round")
	postNew.SetDescription("Starts a new round for the caller. Creates a session and returns its token when none is presented.")
	postNew.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postNew.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(postNew)

	// GET /round
	getRound, _ := r.NewOperationContext(http.MethodGet, "/round")
	getRound.SetSummary("Current round")
	getRound.SetDescription("Returns the board, the hidden slot and the last outcome. Requires a session.")
	getRound.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getRound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getRound)

	// POST /round/place
	postPlace, _ := r.NewOperationContext(http.MethodPost, "/round/place")
	postPlace.SetSummary("Place a card")
	postPlace.SetDescription("Drops a card on the board. Drops on an occupied or non-hidden slot are ignored.")
	postPlace.AddReqStructure(PlaceRequest{})
	postPlace.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPlace.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postPlace.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postPlace)

	// POST /round/withdraw
	postWithdraw, _ := r.NewOperationContext(http.MethodPost, "/round/withdraw")
	postWithdraw.SetSummary("Withdraw the placed card")
	postWithdraw.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postWithdraw.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postWithdraw)

	// POST /round/submit
	postSubmit, _ := r.NewOperationContext(http.MethodPost, "/round/submit")
	postSubmit.SetSummary("Submit the hidden slot")
	postSubmit.SetDescription("Validates the placed card: category first, then card identity.")
	postSubmit.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postSubmit)

	// GET /round/groups
	getGroups, _ := r.NewOperationContext(http.MethodGet, "/round/groups")
	getGroups.SetSummary("Grouped board")
	getGroups.SetDescription("Board positions grouped into runs of the same category.")
	getGroups.AddRespStructure(GroupsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getGroups.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getGroups)

	// GET /debug/catalog
	getDebug, _ := r.NewOperationContext(http.MethodGet, "/debug/catalog")
	getDebug.SetSummary("Catalog counts")
	getDebug.AddRespStructure(DebugCatalogResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getDebug)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
