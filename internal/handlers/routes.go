package handlers

import "github.com/gofiber/fiber/v2"

// Routes groups the API handlers mounted under /api/v1.
type Routes struct {
	Health     *HealthHandler
	Scorecard  *ScorecardHandler
	Assessment *AssessmentHandler
	Report     *ReportHandler
	Regulation *RegulationHandler
}

// Register mounts every endpoint on router.
func (r Routes) Register(router fiber.Router) {
	router.Get("/health", r.Health.HandleHealth)
	router.Get("/status", r.Health.HandleStatus)

	router.Post("/extract", r.Scorecard.HandleExtract)
	router.Post("/scorecard", r.Scorecard.HandleScorecard)
	router.Post("/scorecard/upload", r.Scorecard.HandleScorecardUpload)

	router.Post("/assessments", r.Assessment.HandleCreate)
	router.Get("/assessments/:id", r.Assessment.HandleGet)

	router.Post("/report", r.Report.HandleReport)

	router.Get("/regulation_texts", r.Regulation.HandleRegulationTexts)
	router.Get("/regulations/search", r.Regulation.HandleSearch)
}

// Endpoints lists the mounted routes for the API index.
func (r Routes) Endpoints(prefix string) []string {
	return []string{
		"GET " + prefix + "/health",
		"GET " + prefix + "/status",
		"POST " + prefix + "/extract",
		"POST " + prefix + "/scorecard",
		"POST " + prefix + "/scorecard/upload",
		"POST " + prefix + "/assessments",
		"GET " + prefix + "/assessments/:id",
		"POST " + prefix + "/report",
		"GET " + prefix + "/regulation_texts",
		"GET " + prefix + "/regulations/search",
	}
}
