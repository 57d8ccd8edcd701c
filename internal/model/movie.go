package model

import "database/sql"

// Movie is the canonical identity a scraped title resolves to, regardless
// of the spelling variance between sources.  A movie is created on the
// first unmatched sighting of a title and is never deleted.  The Name
// field is immutable once created; Country is the only field mutated
// after creation, and only by the country-normalization fix-up.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name as first seen from a source.
//  ReleaseDate – theatrical release date, when the source supplied one.
//  Country     – country of origin (common short form, e.g. "台灣").
//  Distributor – distribution company, when known.
type Movie struct {
	ID          uint64         // movies.id
	Name        string         // movies.name
	ReleaseDate sql.NullTime   // movies.release_date
	Country     sql.NullString // movies.country
	Distributor sql.NullString // movies.distributor
}
