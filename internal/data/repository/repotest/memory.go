// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/data/repository"

	"github.com/google/uuid"
)

// Store backs every fake repository with shared maps so joins (author
// username, title rating, genre links) and cascades behave like postgres.
type Store struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*entity.User
	codes       map[uuid.UUID]*entity.ConfirmationCode
	categories  map[uuid.UUID]*entity.Category
	genres      map[uuid.UUID]*entity.Genre
	titles      map[uuid.UUID]*entity.Title
	titleGenres map[uuid.UUID][]uuid.UUID
	reviews     map[uuid.UUID]*entity.Review
	comments    map[uuid.UUID]*entity.Comment
}

func NewStore() *Store {
	return &Store{
		users:       map[uuid.UUID]*entity.User{},
		codes:       map[uuid.UUID]*entity.ConfirmationCode{},
		categories:  map[uuid.UUID]*entity.Category{},
		genres:      map[uuid.UUID]*entity.Genre{},
		titles:      map[uuid.UUID]*entity.Title{},
		titleGenres: map[uuid.UUID][]uuid.UUID{},
		reviews:     map[uuid.UUID]*entity.Review{},
		comments:    map[uuid.UUID]*entity.Comment{},
	}
}

// Repository wires the fakes into the same aggregate production code uses.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		User:             &userRepo{s},
		ConfirmationCode: &codeRepo{s},
		Category:         &categoryRepo{s},
		Genre:            &genreRepo{s},
		Title:            &titleRepo{s},
		Review:           &reviewRepo{s},
		Comment:          &commentRepo{s},
	}
}

// Codes returns every stored confirmation code for userID.
func (s *Store) Codes(userID uuid.UUID) []*entity.ConfirmationCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.ConfirmationCode
	for _, c := range s.codes {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

func contains(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==================== USERS ====================

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) find(match func(*entity.User) bool) *entity.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r *userRepo) filtered(search string) []*entity.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if contains(u.Username, search) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (r *userRepo) FindAll(_ context.Context, search string, limit, offset int) ([]*entity.User, error) {
	return page(r.filtered(search), limit, offset), nil
}

func (r *userRepo) CountAll(_ context.Context, search string) (int64, error) {
	return int64(len(r.filtered(search))), nil
}

func (r *userRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && (u.Username == user.Username || strings.EqualFold(u.Email, user.Email)) {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for cid, c := range r.s.codes {
		if c.UserID == id {
			delete(r.s.codes, cid)
		}
	}
	for rid, rv := range r.s.reviews {
		if rv.AuthorID == id {
			r.s.deleteReviewLocked(rid)
		}
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

// ==================== CONFIRMATION CODES ====================

type codeRepo struct{ s *Store }

func (r *codeRepo) Create(_ context.Context, code *entity.ConfirmationCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *code
	r.s.codes[code.ID] = &cp
	return nil
}

func (r *codeRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID) ([]*entity.ConfirmationCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := time.Now()
	var out []*entity.ConfirmationCode
	for _, c := range r.s.codes {
		if c.UserID == userID && !c.IsUsed && c.ExpiresAt.After(now) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *codeRepo) MarkAsUsed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[id]
	if !ok || c.IsUsed {
		return repository.ErrNotFound
	}
	c.IsUsed = true
	return nil
}

func (r *codeRepo) DeleteStale(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	var n int64
	for id, c := range r.s.codes {
		if c.IsUsed || c.ExpiresAt.Before(now) {
			delete(r.s.codes, id)
			n++
		}
	}
	return n, nil
}

// ==================== CATEGORIES ====================

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

func (r *categoryRepo) FindBySlug(_ context.Context, slug string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *categoryRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[uuid.UUID]*entity.Category{}
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			cp := *c
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *categoryRepo) filtered(search string) []*entity.Category {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Category
	for _, c := range r.s.categories {
		if contains(c.Name, search) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *categoryRepo) FindAll(_ context.Context, search string, limit, offset int) ([]*entity.Category, error) {
	return page(r.filtered(search), limit, offset), nil
}

func (r *categoryRepo) CountAll(_ context.Context, search string) (int64, error) {
	return int64(len(r.filtered(search))), nil
}

func (r *categoryRepo) DeleteBySlug(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.categories {
		if c.Slug == slug {
			delete(r.s.categories, id)
			for _, t := range r.s.titles {
				if t.CategoryID != nil && *t.CategoryID == id {
					t.CategoryID = nil
				}
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

// ==================== GENRES ====================

type genreRepo struct{ s *Store }

func (r *genreRepo) Create(_ context.Context, genre *entity.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.genres {
		if g.Slug == genre.Slug {
			return repository.ErrDuplicate
		}
	}
	cp := *genre
	r.s.genres[genre.ID] = &cp
	return nil
}

func (r *genreRepo) FindBySlug(_ context.Context, slug string) (*entity.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, g := range r.s.genres {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *genreRepo) FindBySlugs(_ context.Context, slugs []string) ([]*entity.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := map[string]bool{}
	for _, s := range slugs {
		wanted[s] = true
	}
	var out []*entity.Genre
	for _, g := range r.s.genres {
		if wanted[g.Slug] {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *genreRepo) FindByTitleIDs(_ context.Context, titleIDs []uuid.UUID) (map[uuid.UUID][]*entity.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[uuid.UUID][]*entity.Genre{}
	for _, tid := range titleIDs {
		for _, gid := range r.s.titleGenres[tid] {
			if g, ok := r.s.genres[gid]; ok {
				cp := *g
				out[tid] = append(out[tid], &cp)
			}
		}
		sort.Slice(out[tid], func(i, j int) bool { return out[tid][i].Name < out[tid][j].Name })
	}
	return out, nil
}

func (r *genreRepo) filtered(search string) []*entity.Genre {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Genre
	for _, g := range r.s.genres {
		if contains(g.Name, search) {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *genreRepo) FindAll(_ context.Context, search string, limit, offset int) ([]*entity.Genre, error) {
	return page(r.filtered(search), limit, offset), nil
}

func (r *genreRepo) CountAll(_ context.Context, search string) (int64, error) {
	return int64(len(r.filtered(search))), nil
}

func (r *genreRepo) DeleteBySlug(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, g := range r.s.genres {
		if g.Slug == slug {
			delete(r.s.genres, id)
			for tid, gids := range r.s.titleGenres {
				kept := gids[:0]
				for _, gid := range gids {
					if gid != id {
						kept = append(kept, gid)
					}
				}
				r.s.titleGenres[tid] = kept
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

// ==================== TITLES ====================

type titleRepo struct{ s *Store }

// withRatingLocked copies t and fills the aggregated rating.
func (s *Store) withRatingLocked(t *entity.Title) *entity.Title {
	cp := *t
	cp.Rating = nil
	sum, n := 0, 0
	for _, rv := range s.reviews {
		if rv.TitleID == t.ID {
			sum += rv.Score
			n++
		}
	}
	if n > 0 {
		avg := float64(sum) / float64(n)
		cp.Rating = &avg
	}
	return &cp
}

func (r *titleRepo) Create(_ context.Context, title *entity.Title, genreIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *title
	cp.Rating = nil
	r.s.titles[title.ID] = &cp
	r.s.titleGenres[title.ID] = append([]uuid.UUID(nil), genreIDs...)
	return nil
}

func (r *titleRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Title, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.titles[id]
	if !ok {
		return nil, nil
	}
	return r.s.withRatingLocked(t), nil
}

func (r *titleRepo) matches(t *entity.Title, f entity.TitleFilter) bool {
	if f.Year != 0 && t.Year != f.Year {
		return false
	}
	if !contains(t.Name, f.Name) {
		return false
	}
	if f.CategorySlug != "" {
		if t.CategoryID == nil {
			return false
		}
		c, ok := r.s.categories[*t.CategoryID]
		if !ok || c.Slug != f.CategorySlug {
			return false
		}
	}
	if f.GenreSlug != "" {
		found := false
		for _, gid := range r.s.titleGenres[t.ID] {
			if g, ok := r.s.genres[gid]; ok && g.Slug == f.GenreSlug {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *titleRepo) filtered(f entity.TitleFilter) []*entity.Title {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Title
	for _, t := range r.s.titles {
		if r.matches(t, f) {
			out = append(out, r.s.withRatingLocked(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *titleRepo) FindAll(_ context.Context, f entity.TitleFilter, limit, offset int) ([]*entity.Title, error) {
	return page(r.filtered(f), limit, offset), nil
}

func (r *titleRepo) CountAll(_ context.Context, f entity.TitleFilter) (int64, error) {
	return int64(len(r.filtered(f))), nil
}

func (r *titleRepo) Update(_ context.Context, title *entity.Title, genreIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.titles[title.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *title
	cp.Rating = nil
	r.s.titles[title.ID] = &cp
	if genreIDs != nil {
		r.s.titleGenres[title.ID] = append([]uuid.UUID(nil), genreIDs...)
	}
	return nil
}

func (r *titleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.titles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.titles, id)
	delete(r.s.titleGenres, id)
	for rid, rv := range r.s.reviews {
		if rv.TitleID == id {
			r.s.deleteReviewLocked(rid)
		}
	}
	return nil
}

// ==================== REVIEWS ====================

type reviewRepo struct{ s *Store }

func (s *Store) deleteReviewLocked(id uuid.UUID) {
	delete(s.reviews, id)
	for cid, c := range s.comments {
		if c.ReviewID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *Store) reviewCopyLocked(rv *entity.Review) *entity.Review {
	cp := *rv
	if u, ok := s.users[rv.AuthorID]; ok {
		cp.AuthorUsername = u.Username
	}
	return &cp
}

func (r *reviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.TitleID == review.TitleID && rv.AuthorID == review.AuthorID {
			return repository.ErrDuplicate
		}
	}
	cp := *review
	r.s.reviews[review.ID] = &cp
	return nil
}

func (r *reviewRepo) FindByTitleAndID(_ context.Context, titleID, reviewID uuid.UUID) (*entity.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[reviewID]
	if !ok || rv.TitleID != titleID {
		return nil, nil
	}
	return r.s.reviewCopyLocked(rv), nil
}

func (r *reviewRepo) FindByAuthorAndTitle(_ context.Context, authorID, titleID uuid.UUID) (*entity.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rv := range r.s.reviews {
		if rv.AuthorID == authorID && rv.TitleID == titleID {
			return r.s.reviewCopyLocked(rv), nil
		}
	}
	return nil, nil
}

func (r *reviewRepo) byTitle(titleID uuid.UUID) []*entity.Review {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Review
	for _, rv := range r.s.reviews {
		if rv.TitleID == titleID {
			out = append(out, r.s.reviewCopyLocked(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return out
}

func (r *reviewRepo) FindByTitleID(_ context.Context, titleID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return page(r.byTitle(titleID), limit, offset), nil
}

func (r *reviewRepo) CountByTitleID(_ context.Context, titleID uuid.UUID) (int64, error) {
	return int64(len(r.byTitle(titleID))), nil
}

func (r *reviewRepo) Update(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[review.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rv.Text = review.Text
	rv.Score = review.Score
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteReviewLocked(id)
	return nil
}

// ==================== COMMENTS ====================

type commentRepo struct{ s *Store }

func (s *Store) commentCopyLocked(c *entity.Comment) *entity.Comment {
	cp := *c
	if u, ok := s.users[c.AuthorID]; ok {
		cp.AuthorUsername = u.Username
	}
	return &cp
}

func (r *commentRepo) Create(_ context.Context, comment *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *comment
	r.s.comments[comment.ID] = &cp
	return nil
}

func (r *commentRepo) FindByReviewAndID(_ context.Context, reviewID, commentID uuid.UUID) (*entity.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, nil
	}
	return r.s.commentCopyLocked(c), nil
}

func (r *commentRepo) byReview(reviewID uuid.UUID) []*entity.Comment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Comment
	for _, c := range r.s.comments {
		if c.ReviewID == reviewID {
			out = append(out, r.s.commentCopyLocked(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return out
}

func (r *commentRepo) FindByReviewID(_ context.Context, reviewID uuid.UUID, limit, offset int) ([]*entity.Comment, error) {
	return page(r.byReview(reviewID), limit, offset), nil
}

func (r *commentRepo) CountByReviewID(_ context.Context, reviewID uuid.UUID) (int64, error) {
	return int64(len(r.byReview(reviewID))), nil
}

func (r *commentRepo) Update(_ context.Context, comment *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[comment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Text = comment.Text
	return nil
}

func (r *commentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}
