package e2e

import (
	"github.com/cucumber/godog"

	"touristid/e2e/steps/common"
	"touristid/e2e/steps/vc"
)

// RegisterSteps registers all step definitions
func RegisterSteps(sc *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(sc, tc)
	vc.RegisterSteps(sc, tc)
}
