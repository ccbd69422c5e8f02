// Package loader registers the HTTP features of the server.
//
// A feature contributes routes and can be switched off; the roster feature is
// currently the only one. Manager loads the enabled features in registration
// order and logs the ones it skips.
//
//	mgr := loader.NewManager(logger)
//	mgr.Register(roster.NewFeature(svc, backupByDefault))
//	if err := mgr.LoadAll(app); err != nil {
//	    logger.Fatal("Failed to load features", zap.Error(err))
//	}
package loader
