package main

import (
	"context"
	"fmt"
	"math"

	"github.com/akmonengine/proximity"
	"github.com/akmonengine/proximity/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

func sphere(position mgl64.Vec3, radius float64) *actor.RigidBody {
	return actor.NewRigidBody(actor.NewTransformAt(position, mgl64.QuatIdent()), &actor.Sphere{Radius: radius})
}

func box(position mgl64.Vec3, halfExtents mgl64.Vec3, rotation mgl64.Quat) *actor.RigidBody {
	return actor.NewRigidBody(actor.NewTransformAt(position, rotation), &actor.Box{HalfExtents: halfExtents})
}

func tetrahedron(position mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(actor.NewTransformAt(position, mgl64.QuatIdent()), actor.NewTetrahedron(
		mgl64.Vec3{1, 1, 1},
		mgl64.Vec3{1, -1, -1},
		mgl64.Vec3{-1, 1, -1},
		mgl64.Vec3{-1, -1, 1},
	))
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config, err := proximity.ConfigFromMap(map[string]interface{}{
		"workers":          4,
		"contact_distance": 0.01,
	})
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	detector, err := proximity.New(proximity.WithConfig(config), proximity.WithLogger(logger))
	if err != nil {
		logger.Fatal("creating detector", zap.Error(err))
	}

	pairs := []proximity.Pair{
		{ID: 1, A: sphere(mgl64.Vec3{0, 0, 0}, 1), B: sphere(mgl64.Vec3{3, 0, 0}, 1)},
		{ID: 2, A: sphere(mgl64.Vec3{0, 0, 0}, 1), B: sphere(mgl64.Vec3{1.5, 0, 0}, 1)},
		{
			ID: 3,
			A:  box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent()),
			B:  box(mgl64.Vec3{1.5, 0.25, 0}, mgl64.Vec3{1, 1, 1}, mgl64.QuatRotate(math.Pi/8, mgl64.Vec3{0, 1, 0})),
		},
		{ID: 4, A: tetrahedron(mgl64.Vec3{0, 0, 0}), B: tetrahedron(mgl64.Vec3{0.3, 0.1, 0})},
	}

	results, err := detector.Query(context.Background(), pairs)
	if err != nil {
		logger.Fatal("query", zap.Error(err))
	}
	fmt.Println(proximity.RenderResults(pairs, results))

	// Slide a sphere through a box and report contact events per frame
	events := proximity.NewEvents()
	for _, eventType := range []proximity.EventType{proximity.CONTACT_BEGIN, proximity.CONTACT_PERSIST, proximity.CONTACT_END} {
		events.Subscribe(eventType, func(event proximity.Event) {
			logger.Info("contact event", zap.Stringer("type", event.Type()), zap.Any("event", event))
		})
	}

	ground := box(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{4, 1, 4}, mgl64.QuatIdent())
	for frame := 0; frame < 6; frame++ {
		ball := sphere(mgl64.Vec3{0, 2.5 - 0.5*float64(frame), 0}, 0.5)
		if frame == 5 {
			ball = sphere(mgl64.Vec3{0, 3, 0}, 0.5)
		}

		in := make(chan proximity.Pair, 1)
		in <- proximity.Pair{ID: 1, A: ground, B: ball}
		close(in)

		contacts, errs := detector.NarrowPhase(context.Background(), in)
		for contact := range contacts {
			logger.Debug("frame", zap.Int("frame", frame), zap.Stringer("result", contact.Result))
			events.Record(contact)
		}
		if err := <-errs; err != nil {
			logger.Fatal("narrow phase", zap.Error(err))
		}
		events.Flush()
	}
}
