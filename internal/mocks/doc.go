// Package mocks provides hand-written fakes of the application's interfaces
// for use in tests across packages.
//
// Each mock records its calls behind a mutex and lets a test override
// behavior through function fields:
//
//	gw := mocks.NewMockGateway(
//	    mocks.ContentReply("not json"),
//	    mocks.ContentReply(`{"lesson":"L","quiz":[]}`),
//	)
//	gen, _ := generation.NewGenerator(gw, nil)
//	out := gen.Generate(ctx, "Go channels", "beginner")
//	// gw.Calls() == 2
package mocks
