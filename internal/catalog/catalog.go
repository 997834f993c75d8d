package catalog

import "net/url"

// Book is a catalog entry as the backend returns it. The storefront uses it
// to build cart lines: title, first image, and price are captured at add time.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Publisher   string   `json:"publisher"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	SoldQty     int      `json:"soldQty"`
	Images      []string `json:"images"`
}

// CoverImage returns the first image, or empty when the book has none.
func (b *Book) CoverImage() string {
	if len(b.Images) == 0 {
		return ""
	}
	return b.Images[0]
}

// Genre is a catalog category.
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchQuery is the filter set the backend's book search accepts. Sort is
// ASC or DESC; By is the field it orders on (price, publishDate, or title).
// All fields are optional; an empty query is an unfiltered search.
type SearchQuery struct {
	Keyword string
	Genres  []string
	Sort    string
	By      string
}

// Values encodes the query as backend query parameters. The genre parameter
// repeats once per selected genre, matching the backend's multi-value binding.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	for _, g := range q.Genres {
		if g != "" {
			v.Add("genre", g)
		}
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.By != "" {
		v.Set("by", q.By)
	}
	return v
}
