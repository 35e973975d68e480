// Package lastfm provides a client for the read-only parts of the
// Last.fm API 2.0 used to rebuild a user's listening history.
//
// # Overview
//
// The client speaks the JSON flavour of the API over plain GET requests.
// Only unauthenticated methods are implemented, currently
// user.getRecentTracks. There is no session handling and no request
// signing; an API key is the only credential required.
//
// # Quick Start
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tracks, err := client.User().RecentTracks(ctx, "some-user", from, to)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tracks are returned newest-first, exactly as the API delivers them.
// Entries the API reports without a played-at date (for example a track
// that is still playing) are dropped.
//
// # Error Handling
//
// Application-level failures are returned as *Error with the Last.fm
// error code:
//
//	tracks, err := client.User().RecentTracks(ctx, user, from, to)
//	if err != nil {
//	    var lastfmErr *lastfm.Error
//	    if errors.As(err, &lastfmErr) && lastfmErr.Temporary() {
//	        // back off and try again later
//	    }
//	}
//
// # Configuration
//
// The client can be configured with a custom HTTP client, a base URL
// (for testing), and an optional logger:
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    HTTPClient: &http.Client{Timeout: 10 * time.Second},
//	    Logger:     myLogger, // implements lastfm.Logger
//	})
package lastfm
