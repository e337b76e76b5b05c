package model

// City is the city a cinema belongs to.  Screenings in different cities
// give a movie wider reach.
type City struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	NameDeclinated string `json:"nameDeclinated"`
}

// CinemaSummary is the cinema embedded in a screening summary.
//
// Fields:
//  ID     – cinemas.id
//  Name   – cinemas.name
//  Street – cinemas.street (nullable)
//  City   – joined cities row; zero value when the join fails
type CinemaSummary struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	Street *string `json:"street"`
	City   City    `json:"city"`
}
