package stream

import (
	"encoding/json"

	"github.com/swdee/go-playertrack/tracker"
)

// Message is the JSON document sent to clients for every frame
type Message struct {
	Frame   int            `json:"frame"`
	Tracks  []TrackMessage `json:"tracks"`
	Expired []int          `json:"expired,omitempty"`
}

// TrackMessage is the state of a single live track
type TrackMessage struct {
	ID int `json:"id"`
	// Box is [x1, y1, x2, y2]
	Box      [4]int `json:"box"`
	Lost     int    `json:"lost"`
	Centroid [2]int `json:"centroid"`
}

// NewMessage converts a tracker snapshot into a Message
func NewMessage(snap tracker.Snapshot) Message {

	msg := Message{
		Frame:  snap.Frame,
		Tracks: make([]TrackMessage, 0, len(snap.Tracks)),
	}

	for _, trk := range snap.Tracks {
		c := trk.Centroid()
		msg.Tracks = append(msg.Tracks, TrackMessage{
			ID:       trk.ID,
			Box:      [4]int{trk.Box.X1, trk.Box.Y1, trk.Box.X2, trk.Box.Y2},
			Lost:     trk.Lost,
			Centroid: [2]int{c.X, c.Y},
		})
	}

	for _, trk := range snap.Expired {
		msg.Expired = append(msg.Expired, trk.ID)
	}

	return msg
}

// Encode marshals the snapshot as a Message
func Encode(snap tracker.Snapshot) ([]byte, error) {
	return json.Marshal(NewMessage(snap))
}
