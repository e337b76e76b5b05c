package model

// CandidateMovie is the scoring view of a movie.  It carries only what the
// selection rules look at; presentation fields are fetched separately.
//
// Fields:
//  ID             – movies.id
//  ProductionYear – movies.production_year
//  HasImage       – true when movies.backdrop_url is non-empty
//  GenreIDs       – ids from movies_genres
//  Screenings     – upcoming screenings of this movie
type CandidateMovie struct {
	ID             uint64
	ProductionYear int
	HasImage       bool
	GenreIDs       []uint64
	Screenings     []CandidateScreening
}

// Genre is a genre as exposed in responses.
type Genre struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// MovieHero is the movie summary shown next to a featured screening.
// Nullable columns are pointers so that they serialise as JSON null.
type MovieHero struct {
	ID             uint64  `json:"id"`
	Title          string  `json:"title"`
	TitleOriginal  *string `json:"titleOriginal"`
	ProductionYear int     `json:"productionYear"`
	Duration       *int    `json:"duration"`
	PosterURL      *string `json:"posterUrl"`
	Genres         []Genre `json:"genres"`
	Description    *string `json:"description"`
	BackdropURL    *string `json:"backdropUrl"`
}
