// Package shutdown coordinates process termination for the provisioning
// services.
//
// A Handler waits for SIGINT/SIGTERM (or a cancelled context), then runs the
// registered hooks newest-first under a single deadline:
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	return h.Wait(ctx)
package shutdown
