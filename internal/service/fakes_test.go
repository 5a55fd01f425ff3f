package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

// errConflict mirrors the SQL repos, which surface unique violations as the
// bare conflict sentinel.
func errConflict(string) error { return apperr.ErrConflict }

// In-memory repository fakes shared by the service tests. They mirror the
// SQL implementations' error contracts: named ErrXNotFound on misses,
// apperr.ErrConflict on unique violations.

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errConflict("user")
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) ByUsername(username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakePostRepo struct {
	posts map[string]*model.Post
	tags  map[string][]string // post id -> tag ids
	byTag map[string]*model.Tag
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[string]*model.Post),
		tags:  make(map[string][]string),
		byTag: make(map[string]*model.Tag),
	}
}

func (r *fakePostRepo) Create(post *model.Post) error {
	for _, p := range r.posts {
		if p.Slug == post.Slug {
			return errConflict("post slug")
		}
	}
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) ByID(id string) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePostRepo) ByIDAndAuthor(id, authorID string) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok || p.AuthorID != authorID {
		return nil, repository.ErrPostNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePostRepo) BySlug(slug string) (*model.Post, error) {
	for _, p := range r.posts {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrPostNotFound
}

func (r *fakePostRepo) List(filter repository.PostFilter) ([]*model.Post, error) {
	var out []*model.Post
	for _, p := range r.posts {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Featured && !p.IsFeatured {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePostRepo) Update(post *model.Post) error {
	_, ok := r.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) Delete(id string) error {
	_, ok := r.posts[id]
	if !ok {
		return repository.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) IncrementViewCount(id string) error {
	p, ok := r.posts[id]
	if ok {
		p.ViewCount++
	}
	return nil
}

func (r *fakePostRepo) SetLikeCount(id string, count int) error {
	p, ok := r.posts[id]
	if ok {
		p.LikeCount = count
	}
	return nil
}

func (r *fakePostRepo) SetCommentCount(id string, count int) error {
	p, ok := r.posts[id]
	if ok {
		p.CommentCount = count
	}
	return nil
}

func (r *fakePostRepo) SetTags(postID string, tagIDs []string) error {
	r.tags[postID] = tagIDs
	return nil
}

func (r *fakePostRepo) Tags(postID string) ([]*model.Tag, error) {
	var out []*model.Tag
	for _, id := range r.tags[postID] {
		tag, ok := r.byTag[id]
		if ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	categories map[string]*model.Category // by slug
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]*model.Category)}
}

func (r *fakeCategoryRepo) Create(category *model.Category) error {
	_, ok := r.categories[category.Slug]
	if ok {
		return errConflict("category")
	}
	copied := *category
	r.categories[category.Slug] = &copied
	return nil
}

func (r *fakeCategoryRepo) BySlug(slug string) (*model.Category, error) {
	c, ok := r.categories[slug]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCategoryRepo) List() ([]*model.Category, error) {
	var out []*model.Category
	for _, c := range r.categories {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

type fakeTagRepo struct {
	tags map[string]*model.Tag // by slug
	post *fakePostRepo
}

func newFakeTagRepo(post *fakePostRepo) *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*model.Tag), post: post}
}

func (r *fakeTagRepo) Create(tag *model.Tag) error {
	_, ok := r.tags[tag.Slug]
	if ok {
		return errConflict("tag")
	}
	copied := *tag
	r.tags[tag.Slug] = &copied
	if r.post != nil {
		r.post.byTag[tag.ID] = &copied
	}
	return nil
}

func (r *fakeTagRepo) BySlug(slug string) (*model.Tag, error) {
	t, ok := r.tags[slug]
	if !ok {
		return nil, repository.ErrTagNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTagRepo) List() ([]*model.Tag, error) {
	var out []*model.Tag
	for _, t := range r.tags {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments map[string]*model.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment)}
}

func (r *fakeCommentRepo) Create(comment *model.Comment) error {
	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) ByID(id string) (*model.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrCommentNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCommentRepo) TopLevelByPost(postID string) ([]*model.Comment, error) {
	var out []*model.Comment
	for _, c := range r.comments {
		if c.PostID == postID && c.ParentID == nil {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) Replies(parentID string) ([]*model.Comment, error) {
	var out []*model.Comment
	for _, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) Delete(id string) error {
	_, ok := r.comments[id]
	if !ok {
		return repository.ErrCommentNotFound
	}
	delete(r.comments, id)
	for cid, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

func (r *fakeCommentRepo) CountByPost(postID string) (int, error) {
	count := 0
	for _, c := range r.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

type fakeLikeRepo struct {
	likes map[string]*model.Like // key: postID + "/" + userID
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[string]*model.Like)}
}

func likeKey(postID, userID string) string { return postID + "/" + userID }

func (r *fakeLikeRepo) Create(like *model.Like) error {
	key := likeKey(like.PostID, like.UserID)
	_, ok := r.likes[key]
	if ok {
		return errConflict("like")
	}
	copied := *like
	r.likes[key] = &copied
	return nil
}

func (r *fakeLikeRepo) ByPostAndUser(postID, userID string) (*model.Like, error) {
	l, ok := r.likes[likeKey(postID, userID)]
	if !ok {
		return nil, repository.ErrLikeNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLikeRepo) Delete(postID, userID string) error {
	key := likeKey(postID, userID)
	_, ok := r.likes[key]
	if !ok {
		return repository.ErrLikeNotFound
	}
	delete(r.likes, key)
	return nil
}

func (r *fakeLikeRepo) CountByPost(postID string) (int, error) {
	count := 0
	for _, l := range r.likes {
		if l.PostID == postID {
			count++
		}
	}
	return count, nil
}

type fakeFeatherRepo struct {
	feathers map[string]*model.Feather
	files    map[string][]string // feather id -> file ids
	fileRepo *fakeFileRepo
}

func newFakeFeatherRepo(fileRepo *fakeFileRepo) *fakeFeatherRepo {
	return &fakeFeatherRepo{
		feathers: make(map[string]*model.Feather),
		files:    make(map[string][]string),
		fileRepo: fileRepo,
	}
}

func (r *fakeFeatherRepo) Create(feather *model.Feather) error {
	for _, f := range r.feathers {
		if f.PostID == feather.PostID {
			return errConflict("feather")
		}
	}
	copied := *feather
	r.feathers[feather.ID] = &copied
	return nil
}

func (r *fakeFeatherRepo) ByID(id string) (*model.Feather, error) {
	f, ok := r.feathers[id]
	if !ok {
		return nil, repository.ErrFeatherNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFeatherRepo) ByPostID(postID string) (*model.Feather, error) {
	for _, f := range r.feathers {
		if f.PostID == postID {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrFeatherNotFound
}

func (r *fakeFeatherRepo) UpdatePayload(id string, payload []byte) error {
	f, ok := r.feathers[id]
	if !ok {
		return repository.ErrFeatherNotFound
	}
	f.Payload = payload
	f.UpdatedAt = time.Now()
	return nil
}

func (r *fakeFeatherRepo) Delete(id string) error {
	_, ok := r.feathers[id]
	if !ok {
		return repository.ErrFeatherNotFound
	}
	delete(r.feathers, id)
	delete(r.files, id)
	return nil
}

func (r *fakeFeatherRepo) SetFiles(featherID string, fileIDs []string) error {
	r.files[featherID] = fileIDs
	return nil
}

func (r *fakeFeatherRepo) Files(featherID string) ([]*model.UploadedFile, error) {
	if r.fileRepo == nil {
		return nil, nil
	}
	return r.fileRepo.ByIDs(r.files[featherID])
}

func (r *fakeFeatherRepo) Types() ([]*model.FeatherType, error) {
	var out []*model.FeatherType
	for _, kind := range model.FeatherKinds {
		out = append(out, &model.FeatherType{ID: kind, Name: kind, Slug: kind, IsActive: true})
	}
	return out, nil
}

type fakeFileRepo struct {
	files map[string]*model.UploadedFile
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*model.UploadedFile)}
}

func (r *fakeFileRepo) Create(file *model.UploadedFile) error {
	copied := *file
	r.files[file.ID] = &copied
	return nil
}

func (r *fakeFileRepo) ByID(id string) (*model.UploadedFile, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFileRepo) ByIDs(ids []string) ([]*model.UploadedFile, error) {
	var out []*model.UploadedFile
	for _, id := range ids {
		f, ok := r.files[id]
		if ok {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) ByUploader(uploaderID string) ([]*model.UploadedFile, error) {
	var out []*model.UploadedFile
	for _, f := range r.files {
		if f.UploaderID == uploaderID {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) Delete(id string) error {
	_, ok := r.files[id]
	if !ok {
		return repository.ErrFileNotFound
	}
	delete(r.files, id)
	return nil
}

type fakeCacheRepo struct {
	entries map[string]*model.CacheEntry
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string]*model.CacheEntry)}
}

func (r *fakeCacheRepo) Upsert(entry *model.CacheEntry) error {
	copied := *entry
	r.entries[entry.Key] = &copied
	return nil
}

func (r *fakeCacheRepo) ByKey(key string) (*model.CacheEntry, error) {
	e, ok := r.entries[key]
	if !ok {
		return nil, repository.ErrCacheEntryNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeCacheRepo) Delete(key string) error {
	delete(r.entries, key)
	return nil
}

func (r *fakeCacheRepo) DeleteExpired(now time.Time) (int64, error) {
	var removed int64
	for key, e := range r.entries {
		if e.Expired(now) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed, nil
}

type fakeMaptchaRepo struct {
	challenges map[string]*model.MAPTCHAChallenge
}

func newFakeMaptchaRepo() *fakeMaptchaRepo {
	return &fakeMaptchaRepo{challenges: make(map[string]*model.MAPTCHAChallenge)}
}

func (r *fakeMaptchaRepo) Create(challenge *model.MAPTCHAChallenge) error {
	copied := *challenge
	r.challenges[challenge.ID] = &copied
	return nil
}

func (r *fakeMaptchaRepo) ByID(id string) (*model.MAPTCHAChallenge, error) {
	c, ok := r.challenges[id]
	if !ok {
		return nil, repository.ErrChallengeNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeMaptchaRepo) Consume(id string) (bool, error) {
	c, ok := r.challenges[id]
	if !ok || c.Used {
		return false, nil
	}
	c.Used = true
	return true, nil
}

type fakeSiteModuleRepo struct {
	modules  []*model.Module
	themes   []*model.Theme
	mentions map[string]*model.WebMention // key: source + "|" + target
	rights   map[string]*model.PostRights // by post id
}

func newFakeSiteModuleRepo() *fakeSiteModuleRepo {
	return &fakeSiteModuleRepo{
		mentions: make(map[string]*model.WebMention),
		rights:   make(map[string]*model.PostRights),
	}
}

func (r *fakeSiteModuleRepo) Modules() ([]*model.Module, error) { return r.modules, nil }
func (r *fakeSiteModuleRepo) Themes() ([]*model.Theme, error)   { return r.themes, nil }

func (r *fakeSiteModuleRepo) CreateWebMention(mention *model.WebMention) error {
	key := mention.Source + "|" + mention.Target
	_, ok := r.mentions[key]
	if ok {
		return errConflict("webmention")
	}
	copied := *mention
	r.mentions[key] = &copied
	return nil
}

func (r *fakeSiteModuleRepo) ApprovedWebMentions() ([]*model.WebMention, error) {
	var out []*model.WebMention
	for _, m := range r.mentions {
		if m.IsApproved {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSiteModuleRepo) CreatePostRights(rights *model.PostRights) error {
	_, ok := r.rights[rights.PostID]
	if ok {
		return errConflict("post rights")
	}
	copied := *rights
	r.rights[rights.PostID] = &copied
	return nil
}

func (r *fakeSiteModuleRepo) RightsByPost(postID string) (*model.PostRights, error) {
	rights, ok := r.rights[postID]
	if !ok {
		return nil, repository.ErrRightsNotFound
	}
	copied := *rights
	return &copied, nil
}

// fakeTier is a controllable volatile tier; entries never expire on their
// own, so tests decide exactly what each tier holds.
type fakeTier struct {
	entries map[string]string
	sets    int
}

func newFakeTier() *fakeTier {
	return &fakeTier{entries: make(map[string]string)}
}

func (t *fakeTier) Get(_ context.Context, key string) (string, error) {
	v, ok := t.entries[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (t *fakeTier) Set(_ context.Context, key, value string, _ time.Duration) error {
	t.entries[key] = value
	t.sets++
	return nil
}

func (t *fakeTier) Delete(_ context.Context, key string) error {
	delete(t.entries, key)
	return nil
}

type fakeStorage struct {
	saved map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(path string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.saved[path] = data
	return nil
}

func (s *fakeStorage) Delete(path string) error {
	delete(s.saved, path)
	return nil
}

func (s *fakeStorage) URL(path string) string {
	return "https://blobs.test/" + path
}
