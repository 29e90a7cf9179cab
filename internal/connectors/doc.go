// Package connectors holds the record sources the catalog reads from.
// Each subpackage knows how to fetch raw dataset records from one kind
// of store (a Notion database, the bundled sample set).
//
// Connectors implement the driven.DatasetSource port and are chosen at
// startup from the source.backend setting.
package connectors
