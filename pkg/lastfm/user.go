package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserService provides read access to user listening data.
type UserService struct {
	client *Client
}

// RecentTracks fetches the tracks a user listened to between from and
// to (unix seconds, inclusive).
//
// Tracks are returned newest-first, preserving the API's ordering.
// Entries without a date (e.g. a currently playing track) are skipped.
func (u *UserService) RecentTracks(ctx context.Context, user string, from, to int64) ([]RecentTrack, error) {
	params := map[string]string{
		"user": user,
		"from": strconv.FormatInt(from, 10),
		"to":   strconv.FormatInt(to, 10),
	}

	body, err := u.client.call(ctx, "user.getRecentTracks", params)
	if err != nil {
		return nil, err
	}

	var probe struct {
		RecentTracks *json.RawMessage `json:"recenttracks"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse recent tracks: %w", err)
	}
	if probe.RecentTracks == nil {
		return nil, fmt.Errorf("response is missing recenttracks")
	}

	var envelope recentTracksEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse recent tracks: %w", err)
	}

	var tracks []RecentTrack
	for _, entry := range envelope.RecentTracks.Track {
		if entry.Date == nil {
			// No played-at date, nothing to anchor it to.
			continue
		}

		uts, err := strconv.ParseInt(entry.Date.UTS, 10, 64)
		if err != nil {
			continue
		}

		tracks = append(tracks, RecentTrack{
			Name:      entry.Name,
			Artist:    entry.Artist.Text,
			Timestamp: uts,
		})
	}

	return tracks, nil
}
