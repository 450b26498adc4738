// Package model holds the domain entities served by the API and their wire
// projections.
package model
