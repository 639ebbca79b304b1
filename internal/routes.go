package internal

import (
	"tripgen/internal/controllers"
	"tripgen/internal/models"
	"tripgen/internal/providers"
)

// versionPrefix keeps v1 on the unprefixed paths.
func versionPrefix(v models.Version) string {
	if v == models.VersionV1 {
		return ""
	}
	return "/" + string(v)
}

func InitRoutes(generateController *controllers.GenerateController, planController *controllers.PlanController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	for _, v := range models.Versions {
		versioned := routers.Prefix(versionPrefix(v))
		versioned.Post("/generate", generateController.Generate(v))
		versioned.Post("/plans", planController.Save(v))
		versioned.Get("/plans", planController.List(v))
		versioned.Get("/plans/{slug}", planController.Get(v))
	}
	return routers
}
