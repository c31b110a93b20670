// Package app is the composition root of the potluck TUI.
//
// Run loads the config, opens the log file, builds the store client and the
// reconcile engine, performs a first refresh and starts background polling
// before handing control to the UI:
//
//	config.Load ──> logging.OpenFile ──> remote.NewClient
//	                                          │
//	                     metrics.New ──> reconcile.New ──> StartPolling
//	                                          │
//	                                       ui.Run (blocks)
//
// A failed first refresh is logged and left to the poller, so the UI can
// start while the store is down and shows the offline state until it
// answers. Closing the engine on return stops polling.
package app
