// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage/internal/models"
)

func sampleForest() (*Forest, map[string]models.Term) {
	punjab := term("Punjab", 0, nil)
	sindh := term("Sindh", 1, nil)
	lahore := term("Lahore", 0, &punjab)
	multan := term("Multan", 0, &punjab) // ties with Lahore on position
	walled := term("Walled City", 0, &lahore)
	karachi := term("Karachi", 0, &sindh)

	byName := map[string]models.Term{}
	all := []models.Term{sindh, walled, multan, punjab, karachi, lahore}
	for _, t := range all {
		byName[t.Name] = t
	}
	return NewForest(all), byName
}

func TestForest_RenderOrder(t *testing.T) {
	f, _ := sampleForest()

	assert.Equal(t, []string{
		"0:Punjab",
		"1:Lahore",
		"2:Walled City",
		"1:Multan",
		"0:Sindh",
		"1:Karachi",
	}, nodeNames(f.Nodes()))
}

func TestForest_SiblingOrderIsStable(t *testing.T) {
	terms := []models.Term{
		term("B", 1, nil), term("A", 1, nil), term("C", 0, nil),
		term("D", 2, nil), term("A", 1, nil),
	}
	want := nodeNames(NewForest(terms).Nodes())

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Term(nil), terms...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, nodeNames(NewForest(shuffled).Nodes()))
	}
	assert.Equal(t, []string{"0:C", "0:A", "0:A", "0:B", "0:D"}, want)
}

func TestForest_Siblings(t *testing.T) {
	f, byName := sampleForest()

	assert.Equal(t, []string{"Punjab", "Sindh"}, names(f.Siblings(nil)))
	punjab := byName["Punjab"].ID
	assert.Equal(t, []string{"Lahore", "Multan"}, names(f.Siblings(&punjab)))
	assert.Empty(t, f.Children(uuid.Nil))
}

func TestForest_Filter(t *testing.T) {
	f, byName := sampleForest()

	t.Run("empty query shows everything", func(t *testing.T) {
		res := f.Filter("  ")
		assert.Len(t, res.Nodes, 6)
		assert.Empty(t, res.HiddenMatches)
	})

	t.Run("root match brings subtree", func(t *testing.T) {
		res := f.Filter("PUNJ")
		assert.Equal(t, []string{"0:Punjab", "1:Lahore", "2:Walled City", "1:Multan"}, nodeNames(res.Nodes))
		assert.Empty(t, res.HiddenMatches)
	})

	t.Run("slug matches", func(t *testing.T) {
		sindh := byName["Sindh"]
		sindh.Slug = "south-east"
		g := f.With(sindh)
		res := g.Filter("south")
		assert.Equal(t, []string{"0:Sindh", "1:Karachi"}, nodeNames(res.Nodes))
	})

	t.Run("descendant match is reported not shown", func(t *testing.T) {
		res := f.Filter("karachi")
		assert.Empty(t, res.Nodes)
		assert.Equal(t, []string{"Karachi"}, names(res.HiddenMatches))
	})
}

func TestForest_Ancestors(t *testing.T) {
	f, byName := sampleForest()

	assert.Equal(t, []string{"Lahore", "Punjab"}, names(f.Ancestors(byName["Walled City"].ID)))
	assert.Empty(t, f.Ancestors(byName["Punjab"].ID))
	assert.Empty(t, f.Ancestors(uuid.New()))
}

func TestForest_StoredCycleIsDetached(t *testing.T) {
	a := term("A", 0, nil)
	b := term("B", 0, &a)
	a.ParentID = &b.ID // a <-> b
	orphanParent := uuid.New()
	orphan := term("Orphan", 0, nil)
	orphan.ParentID = &orphanParent
	root := term("Root", 0, nil)

	f := NewForest([]models.Term{a, b, orphan, root})

	assert.Equal(t, []string{"0:Root"}, nodeNames(f.Nodes()))
	assert.ElementsMatch(t, []string{"A", "B", "Orphan"}, names(f.Detached()))
	assert.Len(t, f.Ancestors(a.ID), 1)
}

func TestForest_WithAndWithout(t *testing.T) {
	f, byName := sampleForest()

	lahore := byName["Lahore"]
	lahore.Name = "Lahore Division"
	g := f.With(lahore)
	got, ok := g.Get(lahore.ID)
	require.True(t, ok)
	assert.Equal(t, "Lahore Division", got.Name)
	assert.Equal(t, 6, g.Len())

	orig, _ := f.Get(lahore.ID)
	assert.Equal(t, "Lahore", orig.Name)

	h := f.Without(byName["Lahore"].ID)
	assert.Equal(t, 5, h.Len())
	assert.Equal(t, []string{"Walled City"}, names(h.Detached()))
}
