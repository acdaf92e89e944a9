// Package models defines domain entities for the setcast upload pipeline.
//
// The package contains three categories of types:
//
// 1. Songlist types: the canonical parsed representation of a DJ set
//   - [Song] : A single title/artist pair
//   - [Songlist] : Broadcast metadata plus the ordered track list
//   - [BroadcastMetadata] : Show details submitted alongside the audio
//
// 2. Parse types: parser output and its failure taxonomy
//   - [ParseResult] : Ordered songs plus a [ParseErrorKind]
//   - [ParseErrorKind] : Closed enumeration of parse failure stages
//
// 3. Upload types: per-upload progress and per-destination outcomes
//   - [UploadStatusRecord] : Durable status record for one upload id
//   - [StatusKind] : Ordered status progression with two terminal states
//   - [DestinationResult] : Outcome of one destination's upload protocol
//
// The Songlist artifact is written once per upload and treated as immutable
// afterwards; downstream tooling reads it but never writes it.
package models
