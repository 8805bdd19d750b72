// Package chat contains the Twitch chat translation relay and the auto-orchestrator.
//
// It provides two entrypoints:
//   - Relay.Run: connects to Twitch IRC for the configured channel, runs every
//     incoming message through the filter chain and language detector, translates
//     eligible messages, and emits the result to a sink (chat itself when write
//     credentials exist, the log otherwise). It reconnects after abnormal
//     disconnects until the context is cancelled.
//   - StartAutoRelay: polls Twitch live status and only keeps the relay
//     connected while the channel is live.
//
// Credentials: sending requires a bot username and an OAuth token with
// chat:read/chat:edit scopes. Without a token the relay logs in anonymously
// and is read-only.
package chat
