package models

import (
	"time"

	"github.com/thedevsaddam/govalidator"
)

type InsertArtworkOpts struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
	ImageURL    string `json:"image_url"`
	Published   bool   `json:"published"`
}

var InsertArtworkRules = govalidator.MapData{
	"title":       []string{"required"},
	"description": []string{},
	"category":    []string{"required"},
	"price":       []string{"required", "numeric", "min:1"},
	"image_url":   []string{"required", "url"},
}

type UpdateArtworkOpts struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
	Published   bool   `json:"published"`
}

var UpdateArtworkRules = govalidator.MapData{
	"title":       []string{"required"},
	"description": []string{},
	"category":    []string{"required"},
	"price":       []string{"required", "numeric", "min:1"},
}

type GetArtworksOpts struct {
	Category  string `schema:"category"`
	OwnerIDs  []int  `schema:"owner_ids"`
	PriceFrom int    `schema:"price_from"`
	PriceTo   int    `schema:"price_to"`
	LimitFrom int    `schema:"limit_from"`
	LimitTo   int    `schema:"limit_to"`
}

var GetArtworksRules = govalidator.MapData{
	"category":   []string{},
	"owner_ids":  []string{"array_int"},
	"price_from": []string{"numeric"},
	"price_to":   []string{"numeric"},
	"limit_from": []string{"numeric"},
	"limit_to":   []string{"numeric"},
}

// Artwork price is in the smallest currency unit. Orders capture it at
// creation time, so editing it here never changes an existing order's amount.
type Artwork struct {
	ID          int       `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       int       `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	Owner       *User     `json:"owner,omitempty"`
	Published   bool      `json:"published"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

type ArtworksStruct struct {
	Artworks []Artwork `json:"artworks"`
	Total    int       `json:"total"`
}
