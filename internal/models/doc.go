// Package models defines the domain entities for the playlist pipeline.
//
// The package contains three categories of types:
//
// 1. Library data: snapshots of the user's Spotify library
//   - [Track] : Liked-song metadata as fetched from Spotify
//   - [Playlist] : Basic playlist metadata used when reconciling targets
//   - [Enrichment] : Per-track feature entries from external providers
//   - [Classification] : The mood label assigned to a track
//
// 2. Rule types: the persisted filter language for rule-driven playlists
//   - [RuleCondition], [RuleGroup], [RuleSet]
//
// 3. Pipeline state: what the background job manager and sync stage persist
//   - [PipelineJob] : A queued pipeline step with status and progress
//   - [PlaylistDiff] : The computed delta between a target and its remote playlist
//
// Everything here is plain data. Persistence lives in the repositories
// package; evaluation of rule types lives in the rules package.
package models
