package app

import "bloglist-api/internal/model"

type FavoriteBlog struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

type AuthorBlogs struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// Stats summarises a blog list. Pointer fields are nil for an empty list.
type Stats struct {
	TotalLikes   int           `json:"total_likes"`
	FavoriteBlog *FavoriteBlog `json:"favorite_blog"`
	MostBlogs    *AuthorBlogs  `json:"most_blogs"`
	MostLikes    *AuthorLikes  `json:"most_likes"`
}

// ComputeStats walks the list once. Ties go to the entry seen first.
func ComputeStats(blogs []model.Blog) Stats {
	var stats Stats
	if len(blogs) == 0 {
		return stats
	}

	blogsByAuthor := map[string]int{}
	likesByAuthor := map[string]int{}
	var authors []string

	for i := range blogs {
		b := &blogs[i]
		stats.TotalLikes += b.Likes

		if stats.FavoriteBlog == nil || b.Likes > stats.FavoriteBlog.Likes {
			stats.FavoriteBlog = &FavoriteBlog{Title: b.Title, Author: b.Author, Likes: b.Likes}
		}

		if _, seen := blogsByAuthor[b.Author]; !seen {
			authors = append(authors, b.Author)
		}
		blogsByAuthor[b.Author]++
		likesByAuthor[b.Author] += b.Likes
	}

	for _, author := range authors {
		if stats.MostBlogs == nil || blogsByAuthor[author] > stats.MostBlogs.Blogs {
			stats.MostBlogs = &AuthorBlogs{Author: author, Blogs: blogsByAuthor[author]}
		}
		if stats.MostLikes == nil || likesByAuthor[author] > stats.MostLikes.Likes {
			stats.MostLikes = &AuthorLikes{Author: author, Likes: likesByAuthor[author]}
		}
	}
	return stats
}
