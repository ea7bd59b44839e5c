package testutil

import "github.com/roach88/schemata/internal/ir"

// FilmClasses returns a small class table used across package tests:
//
//	Film       remoteId (pk), title, episode, director, releaseDate, poster
//	Screening  relatedFilm -> Film, venue, seats, startsAt
//	Festival   name (pk), films -> [Film], opening -> Screening
//	Person     name, mentor -> Person (self-referential)
func FilmClasses() []ir.ClassSpec {
	return []ir.ClassSpec{
		{
			Name:       "Film",
			PrimaryKey: "remoteId",
			Properties: []ir.PropertySpec{
				{Name: "remoteId", Type: ir.TypeString},
				{Name: "title", Type: ir.TypeString, Nullable: true},
				{Name: "episode", Type: ir.TypeInt, Nullable: true},
				{Name: "director", Type: ir.TypeString, Nullable: true},
				{Name: "releaseDate", Type: ir.TypeDate, Nullable: true},
				{Name: "poster", Type: ir.TypeData, Nullable: true},
				{Name: "canon", Type: ir.TypeBool, Nullable: true},
			},
		},
		{
			Name: "Screening",
			Properties: []ir.PropertySpec{
				{Name: "relatedFilm", Type: ir.TypeLink, Target: "Film", Nullable: true},
				{Name: "venue", Type: ir.TypeString},
				{Name: "seats", Type: ir.TypeInt},
				{Name: "startsAt", Type: ir.TypeDate, Nullable: true},
			},
		},
		{
			Name:       "Festival",
			PrimaryKey: "name",
			Properties: []ir.PropertySpec{
				{Name: "name", Type: ir.TypeString},
				{Name: "films", Type: ir.TypeList, Target: "Film"},
				{Name: "opening", Type: ir.TypeLink, Target: "Screening"},
			},
		},
		{
			Name: "Person",
			Properties: []ir.PropertySpec{
				{Name: "name", Type: ir.TypeString},
				{Name: "mentor", Type: ir.TypeLink, Target: "Person", Nullable: true},
			},
		},
	}
}
