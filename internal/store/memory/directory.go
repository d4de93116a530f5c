package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store"
)

// Directory is an in-memory user and post lookup. Tests fill it with PutUser
// and PutPost; the server loads it from a seed file.
type Directory struct {
	mu    sync.RWMutex
	users map[string]models.User
	posts map[string]models.Post
}

var _ store.Directory = (*Directory)(nil)

func NewDirectory() *Directory {
	return &Directory{
		users: make(map[string]models.User),
		posts: make(map[string]models.Post),
	}
}

func (d *Directory) PutUser(u models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *Directory) PutPost(p models.Post) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posts[p.ID] = p
}

func (d *Directory) GetUser(_ context.Context, id string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (d *Directory) GetUsers(_ context.Context, ids []string) (map[string]models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (d *Directory) GetPost(_ context.Context, id string) (*models.Post, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

// Seed is the JSON document read by Load:
//
//	{"users": [{"id": "alice", "username": "alice"}], "posts": [...]}
type Seed struct {
	Users []models.User `json:"users"`
	Posts []models.Post `json:"posts"`
}

// Load adds every user and post in the JSON seed read from r.
func (d *Directory) Load(r io.Reader) (Seed, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("failed to decode directory seed: %w", err)
	}
	for _, u := range seed.Users {
		if u.ID == "" {
			return Seed{}, fmt.Errorf("directory seed: user without id")
		}
		d.PutUser(u)
	}
	for _, p := range seed.Posts {
		if p.ID == "" {
			return Seed{}, fmt.Errorf("directory seed: post without id")
		}
		d.PutPost(p)
	}
	return seed, nil
}

// LoadFile is Load on the file at path.
func (d *Directory) LoadFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to open directory seed: %w", err)
	}
	defer f.Close()
	return d.Load(f)
}
