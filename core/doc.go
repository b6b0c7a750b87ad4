// Package core contains the lead-search domain contracts, entities, and the
// ingestion/lifecycle orchestration. Storage, transport and HTTP adapters
// depend on this package; core must not depend on them.
package core
