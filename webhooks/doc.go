// Package webhooks verifies and decodes inbound workflow deliveries.
//
// A delivery is authenticated with a shared secret header, decoded into an
// ingest request and handed to the ingestion handler. Redelivery is safe:
// duplicate leads are absorbed downstream.
package webhooks
