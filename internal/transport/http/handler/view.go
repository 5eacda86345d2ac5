package handler

import "bloglist-api/internal/model"

// Views are the public projections. Password hashes and internal timestamps
// never leave this package.

type ownerView struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	ID       string `json:"id"`
}

type blogView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Author string      `json:"author"`
	URL    string      `json:"url"`
	Likes  int         `json:"likes"`
	User   interface{} `json:"user"`
}

type blogSummaryView struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ID     string `json:"id"`
}

type userView struct {
	ID       string            `json:"id"`
	Username string            `json:"username"`
	Name     string            `json:"name"`
	Blogs    []blogSummaryView `json:"blogs"`
}

// newBlogView renders the owner as an object when it was preloaded and as
// the bare id otherwise.
func newBlogView(b *model.Blog) blogView {
	view := blogView{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
		User:   b.UserID,
	}
	if b.User != nil {
		view.User = ownerView{Username: b.User.Username, Name: b.User.Name, ID: b.User.ID}
	}
	return view
}

func newUserView(u *model.User) userView {
	view := userView{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Blogs:    make([]blogSummaryView, 0, len(u.Blogs)),
	}
	for _, b := range u.Blogs {
		view.Blogs = append(view.Blogs, blogSummaryView{URL: b.URL, Title: b.Title, Author: b.Author, ID: b.ID})
	}
	return view
}
