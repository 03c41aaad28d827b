// Package models contains the GORM persistence models for the payment and
// fulfillment ledgers. Models carry the table mappings and the unique
// constraints the exactly-once guarantees depend on; conversion to and from
// domain types keeps GORM tags out of the domain layer.
package models
