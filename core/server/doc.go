// Package server runs an http.Handler with production timeouts and graceful
// shutdown, designed to be driven by an errgroup.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(srv.Run(ctx, handler))
//	return eg.Wait()
//
// Start binds the listener synchronously, so Addr reports the real port when
// the configured address is ":0". The server speaks plain HTTP; TLS is
// terminated by the load balancer. Config.CoverUpstream stretches the write
// timeout so a slow upstream call still gets its error envelope written.
package server
