// Package systems contains the simulation mechanics: body construction,
// soft-body physics, broad-phase collision detection, and the food pool.
package systems

import (
	"math"

	"github.com/pthm-cable/brine/components"
)

// PhysicsParams collects the per-run constants of the medium.
type PhysicsParams struct {
	DT           float32
	Viscosity    float32
	WorldW       float32
	WorldH       float32
	BoundaryPush float32
	ReferenceMax float32 // actuation reaches full drive at half this energy
}

const (
	actuationCostFactor = 0.001
	parallelDragFactor  = 0.1
	nodeDragFactor      = 0.1
	rodTorqueFactor     = 1.0 / 12.0 // thin-rod moment coefficient
	springDampingRatio  = 0.5
	minAxisLength       = 1e-5
)

// ActuationEffectiveness ramps actuation with stored energy: full drive at
// or above half the reference maximum, falling linearly to zero below.
func ActuationEffectiveness(energy, referenceMax float32) float32 {
	half := referenceMax * 0.5
	if half <= 0 {
		return 1
	}
	return clamp01(energy / half)
}

// StepBody advances one body a single tick: spring and actuation forces,
// self-collision separation, anisotropic link drag, isotropic node drag,
// integration, boundary containment, in that order. Returns the actuation
// energy spent this tick.
func StepBody(body *components.Body, energy float32, tick int32, p PhysicsParams) float32 {
	actEff := ActuationEffectiveness(energy, p.ReferenceMax)
	cost := applySpringForces(body, actEff, tick, p)
	separateOwnNodes(body)
	applyLinkDrag(body, p)
	applyNodeDrag(body, p)
	integrate(body, p)
	containInBounds(body, p)
	return cost
}

func applySpringForces(body *components.Body, actEff float32, tick int32, p PhysicsParams) float32 {
	var cost float32
	for li := range body.Links {
		link := &body.Links[li]
		a := &body.Nodes[link.A]
		b := &body.Nodes[link.B]

		target := link.Rest
		if link.Actuates() {
			phase := float64(link.Phase + float32(tick)*link.Freq*0.1)
			target *= 1 + float32(math.Sin(phase))*link.Amp*actEff
			cost += link.Amp * link.Freq * actuationCostFactor
		}

		dx := b.X - a.X
		dy := b.Y - a.Y
		dist := sqrt32(dx*dx + dy*dy)
		ux, uy := float32(1), float32(0)
		if dist > minAxisLength {
			ux = dx / dist
			uy = dy / dist
		} else {
			dist = minAxisLength
		}

		// Hooke pull toward the target length.
		f := link.Stiffness * (dist - target)

		// Half-critical damping on the axial relative velocity, using the
		// reduced mass of the endpoint pair.
		ma, mb := a.Mass(), b.Mass()
		mu := ma * mb / (ma + mb)
		c := 2 * sqrt32(link.Stiffness*mu) * springDampingRatio
		f += c * ((b.VX-a.VX)*ux + (b.VY-a.VY)*uy)

		a.FX += f * ux
		a.FY += f * uy
		b.FX -= f * ux
		b.FY -= f * uy
	}
	return cost * actEff
}

// separateOwnNodes pushes overlapping nodes of the same body apart along
// their connecting axis. Each node moves by the other node's mass share of
// the overlap, so the pair's mass-weighted midpoint stays put. Coincident
// nodes separate along a fixed axis at epsilon distance.
func separateOwnNodes(body *components.Body) {
	for i := 0; i < len(body.Nodes); i++ {
		for j := i + 1; j < len(body.Nodes); j++ {
			a := &body.Nodes[i]
			b := &body.Nodes[j]
			rsum := a.Size + b.Size
			dx := b.X - a.X
			dy := b.Y - a.Y
			distSq := dx*dx + dy*dy
			if distSq >= rsum*rsum {
				continue
			}
			dist := sqrt32(distSq)
			ux, uy := float32(1), float32(0)
			if dist > minAxisLength {
				ux = dx / dist
				uy = dy / dist
			} else {
				dist = minAxisLength
			}
			overlap := rsum - dist
			ma, mb := a.Mass(), b.Mass()
			inv := 1 / (ma + mb)
			a.X -= ux * overlap * mb * inv
			a.Y -= uy * overlap * mb * inv
			b.X += ux * overlap * ma * inv
			b.Y += uy * overlap * ma * inv
		}
	}
}

func applyLinkDrag(body *components.Body, p PhysicsParams) {
	for li := range body.Links {
		link := &body.Links[li]
		a := &body.Nodes[link.A]
		b := &body.Nodes[link.B]

		dx := b.X - a.X
		dy := b.Y - a.Y
		length := sqrt32(dx*dx + dy*dy)
		if length < minAxisLength {
			length = minAxisLength
			dx, dy = length, 0
		}
		ux := dx / length
		uy := dy / length
		nx, ny := -uy, ux

		vmx := (a.VX + b.VX) * 0.5
		vmy := (a.VY + b.VY) * 0.5
		vPar := vmx*ux + vmy*uy
		vPerp := vmx*nx + vmy*ny

		// A link resists broadside motion ten times harder than edge-on
		// motion; this asymmetry is what turns undulation into thrust.
		cPerp := length * p.Viscosity
		cPar := cPerp * parallelDragFactor
		fx := -(cPar*vPar*ux + cPerp*vPerp*nx)
		fy := -(cPar*vPar*uy + cPerp*vPerp*ny)
		a.FX += fx * 0.5
		a.FY += fy * 0.5
		b.FX += fx * 0.5
		b.FY += fy * 0.5

		// Rotational drag: thin-rod torque opposing the link's spin,
		// applied as an equal and opposite normal force pair.
		omega := ((b.VX-a.VX)*nx + (b.VY-a.VY)*ny) / length
		torque := -rodTorqueFactor * length * length * length * p.Viscosity * omega
		fr := torque / length
		b.FX += fr * nx
		b.FY += fr * ny
		a.FX -= fr * nx
		a.FY -= fr * ny
	}
}

func applyNodeDrag(body *components.Body, p PhysicsParams) {
	for i := range body.Nodes {
		n := &body.Nodes[i]
		damp := 1 / (1 + p.Viscosity*n.Size*nodeDragFactor)
		n.VX *= damp
		n.VY *= damp
	}
}

func integrate(body *components.Body, p PhysicsParams) {
	for i := range body.Nodes {
		n := &body.Nodes[i]
		inv := p.DT / n.Mass()
		n.VX += n.FX * inv
		n.VY += n.FY * inv
		n.X += n.VX * p.DT
		n.Y += n.VY * p.DT
		n.FX, n.FY = 0, 0
	}
}

func containInBounds(body *components.Body, p PhysicsParams) {
	for i := range body.Nodes {
		n := &body.Nodes[i]
		if n.X < 0 {
			n.X = 0
			n.VX += p.BoundaryPush
		} else if n.X > p.WorldW {
			n.X = p.WorldW
			n.VX -= p.BoundaryPush
		}
		if n.Y < 0 {
			n.Y = 0
			n.VY += p.BoundaryPush
		} else if n.Y > p.WorldH {
			n.Y = p.WorldH
			n.VY -= p.BoundaryPush
		}
	}
}
