/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAffineIdentityAndTranslate(t *testing.T) {
	p := Pt{3, 4}
	if q := Identity.Apply(p); q != p {
		t.Fatalf("identity moved point: %v", q)
	}
	q := Translate(10, -2).Apply(p)
	if !approx(q.X, 13) || !approx(q.Y, 2) {
		t.Fatalf("translate: got %v", q)
	}
}

func TestInvertRoundTrips(t *testing.T) {
	m := Translate(5, 7).Mul(Rotate(0.7)).Mul(Scale(2, 3))
	p := Pt{1.5, -2.5}
	q := m.Invert().Apply(m.Apply(p))
	if !approx(q.X, p.X) || !approx(q.Y, p.Y) {
		t.Fatalf("inverse round trip: %v != %v", q, p)
	}
}

func TestInvertSingularReturnsIdentity(t *testing.T) {
	if m := (Affine2D{}).Invert(); m != Identity {
		t.Fatalf("singular inverse = %v, want identity", m)
	}
}

func TestHitRotatedRect(t *testing.T) {
	r := R(0, 0, 100, 40)
	// Unrotated: plain containment
	if !HitRotatedRect(r, 0, Pt{50, 20}) {
		t.Fatal("center miss, deg=0")
	}
	if HitRotatedRect(r, 0, Pt{150, 20}) {
		t.Fatal("outside hit, deg=0")
	}
	// Rotated 90 degrees around center (50,20): the rect occupies
	// x in [30,70], y in [-30,70].
	if !HitRotatedRect(r, 90, Pt{50, -20}) {
		t.Fatal("rotated area miss")
	}
	if HitRotatedRect(r, 90, Pt{95, 20}) {
		t.Fatal("old corner should be outside after rotation")
	}
	// Center is invariant under rotation about itself
	if !HitRotatedRect(r, 37.5, Pt{50, 20}) {
		t.Fatal("center miss under rotation")
	}
}

func TestRotatedBounds(t *testing.T) {
	r := R(0, 0, 100, 40)
	b := RotatedBounds(r, 90)
	if !approx(b.W, 40) || !approx(b.H, 100) {
		t.Fatalf("90deg bounds = %+v, want 40x100", b)
	}
	if b2 := RotatedBounds(r, 0); b2 != r {
		t.Fatalf("0deg bounds changed: %+v", b2)
	}
	// 45 degrees: both AABB sides are w*cos45 + h*sin45 = (100+40)/sqrt2,
	// so the height grows while the width actually shrinks a little
	b3 := RotatedBounds(r, 45)
	want := (100.0 + 40.0) / math.Sqrt2
	if math.Abs(b3.W-want) > 1e-9 || math.Abs(b3.H-want) > 1e-9 {
		t.Fatalf("45deg bounds = %+v, want %.6fx%.6f", b3, want, want)
	}
	if b3.H <= 40 {
		t.Fatalf("45deg height did not grow: %+v", b3)
	}
	// a square's bounds grow on both sides
	sq := RotatedBounds(R(0, 0, 50, 50), 45)
	if sq.W <= 50 || sq.H <= 50 {
		t.Fatalf("rotated square bounds did not grow: %+v", sq)
	}
	// the center never moves
	if c, rc := b3.Center(), r.Center(); !approx(c.X, rc.X) || !approx(c.Y, rc.Y) {
		t.Fatalf("bounds center moved: %+v != %+v", c, rc)
	}
}

func TestRectUnionAndCenter(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(5, 5, 10, 10))
	if u != R(0, 0, 15, 15) {
		t.Fatalf("union = %+v", u)
	}
	if c := R(10, 20, 30, 40).Center(); !approx(c.X, 25) || !approx(c.Y, 40) {
		t.Fatalf("center = %+v", c)
	}
}
