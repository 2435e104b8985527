// Package events publishes notifications about saved artifacts.
//
// After an export is stored, an ArtifactSaved event is handed to a
// Publisher. RabbitMQPublisher sends it as a persistent JSON message, either
// to a topic exchange or straight to a queue; NopPublisher drops it. Publish
// failures never fail the export that produced the event.
package events
