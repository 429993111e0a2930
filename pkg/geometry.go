package pdsp

import (
	"encoding/json"
	"fmt"
)

// Geometry bounds the dense representation of each plane.
type Geometry struct {
	MaxTime  int
	MaxWires [NPlanes]int
}

func DefaultGeometry() Geometry {
	return Geometry{
		MaxTime:  913,
		MaxWires: [NPlanes]int{800, 800, 480},
	}
}

// PaddedWires is the width used when all planes share one grid size.
func (g Geometry) PaddedWires() int {
	width := 0
	for _, w := range g.MaxWires {
		width = max(width, w)
	}
	return width
}

// Validate checks that every plane grid has a non-empty size.
func (g Geometry) Validate() error {
	if g.MaxTime <= 0 {
		return &ErrInvalidGeometry{Geometry: g}
	}
	for _, w := range g.MaxWires {
		if w <= 0 {
			return &ErrInvalidGeometry{Geometry: g}
		}
	}
	return nil
}

func (g Geometry) Contains(planeID, wire, time int) bool {
	return wire >= 0 && wire < g.MaxWires[planeID] && time >= 0 && time < g.MaxTime
}

type BoundsPolicy int

const (
	// BoundsIgnore keeps every hit as read.
	BoundsIgnore BoundsPolicy = iota
	// BoundsDrop removes hits outside the geometry.
	BoundsDrop
	// BoundsReject fails the load on the first hit outside the geometry.
	BoundsReject
)

var boundsPolicyStrings = []string{
	"ignore",
	"drop",
	"reject",
}

func (b BoundsPolicy) String() string {
	if b < BoundsIgnore || b > BoundsReject {
		return "UNKNOWN"
	}
	return boundsPolicyStrings[b]
}

func (b BoundsPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BoundsPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range boundsPolicyStrings {
		if v == s {
			*b = BoundsPolicy(i)
			return nil
		}
	}
	return fmt.Errorf("invalid BoundsPolicy: %s", s)
}

// ApplyBounds enforces the policy on the hits of one plane.
func ApplyBounds(hits PlaneHitSet, planeID int, geometry Geometry, policy BoundsPolicy) (PlaneHitSet, error) {
	switch policy {
	case BoundsIgnore:
		return hits, nil
	case BoundsReject:
		for i := range hits.Wire {
			if !geometry.Contains(planeID, hits.Wire[i], hits.Time[i]) {
				return hits, &ErrOutOfBounds{Plane: planeID, Wire: hits.Wire[i], Time: hits.Time[i]}
			}
		}
		return hits, nil
	case BoundsDrop:
		kept := PlaneHitSet{
			Wire:     make([]int, 0, hits.Len()),
			Time:     make([]int, 0, hits.Len()),
			Integral: make([]float32, 0, hits.Len()),
		}
		for i := range hits.Wire {
			if !geometry.Contains(planeID, hits.Wire[i], hits.Time[i]) {
				continue
			}
			kept.Wire = append(kept.Wire, hits.Wire[i])
			kept.Time = append(kept.Time, hits.Time[i])
			kept.Integral = append(kept.Integral, hits.Integral[i])
		}
		return kept, nil
	default:
		return hits, fmt.Errorf("unknown bounds policy %d", policy)
	}
}
