/*
go-playertrack assigns persistent identities to players detected
independently in each frame of a video so that stable trajectories can be
drawn instead of unrelated per frame boxes.

The association and track lifecycle engine lives in the tracker package.
This package wires a FrameSource (video decoding plus an object detector)
through the tracker to one or more Sinks (video overlay writer, SQLite
trajectory recorder, reports, websocket stream) one frame at a time.

See example code and usage in the examples subdirectory.
*/
package playertrack
