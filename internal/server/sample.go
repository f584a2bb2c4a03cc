package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type person struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// sampleStore backs the demo routes. Contents live in memory only.
type sampleStore struct {
	mu      sync.RWMutex
	items   []item
	persons []person
}

func newSampleStore() *sampleStore {
	return &sampleStore{
		items: []item{
			{ID: 1, Name: "Widget"},
			{ID: 2, Name: "Gizmo"},
		},
		persons: []person{
			{ID: 1, FirstName: "Ada", LastName: "Lovelace"},
			{ID: 2, FirstName: "Alan", LastName: "Turing"},
		},
	}
}

func (s *Server) listItems(c *gin.Context) {
	s.store.mu.RLock()
	items := append([]item(nil), s.store.items...)
	s.store.mu.RUnlock()
	c.JSON(http.StatusOK, items)
}

func (s *Server) getItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		s.store.mu.RLock()
		defer s.store.mu.RUnlock()
		for _, it := range s.store.items {
			if it.ID == id {
				c.JSON(http.StatusOK, it)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (s *Server) createItem(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	_ = c.ShouldBindJSON(&req)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Unnamed"
	}

	s.store.mu.Lock()
	it := item{ID: len(s.store.items) + 1, Name: name}
	s.store.items = append(s.store.items, it)
	s.store.mu.Unlock()

	c.JSON(http.StatusCreated, it)
}

func (s *Server) listPersons(c *gin.Context) {
	s.store.mu.RLock()
	persons := append([]person(nil), s.store.persons...)
	s.store.mu.RUnlock()
	c.JSON(http.StatusOK, persons)
}
