package lastfm

// RecentTrack is one entry of a user's listening history.
type RecentTrack struct {
	Name      string // Track name
	Artist    string // Artist name
	Timestamp int64  // When the track was played, unix seconds
}

// recentTracksEnvelope mirrors the JSON shape of user.getRecentTracks.
// The API encodes artist names under "#text" and timestamps as decimal
// strings under date.uts.
type recentTracksEnvelope struct {
	RecentTracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Text string `json:"#text"`
			} `json:"artist"`
			Date *struct {
				UTS string `json:"uts"`
			} `json:"date"`
		} `json:"track"`
		Attr struct {
			Total      string `json:"total"`
			TotalPages string `json:"totalPages"`
			Page       string `json:"page"`
			PerPage    string `json:"perPage"`
		} `json:"@attr"`
	} `json:"recenttracks"`
}
