package engine

import "github.com/noodles-run/noodles-server/types"

// The typed Create* wrappers below mirror rigatoni.core.Server's
// create_method/create_signal/.../create_table convenience methods: each is
// a thin call into Scene.Create that hands back the concrete schema type
// regardless of whether a behavior override is registered for that kind,
// the same way the original's wrappers always return a Delegate typed as
// its declared class even when a subclass instance is what's actually
// stored.

func CreateMethod(s *Scene, m types.Method) (types.Method, error) {
	return createTyped(s, types.KindMethod, m)
}

func CreateSignal(s *Scene, sig types.Signal) (types.Signal, error) {
	return createTyped(s, types.KindSignal, sig)
}

func CreateEntity(s *Scene, e types.Entity) (types.Entity, error) {
	return createTyped(s, types.KindEntity, e)
}

func CreatePlot(s *Scene, p types.Plot) (types.Plot, error) {
	return createTyped(s, types.KindPlot, p)
}

func CreateBuffer(s *Scene, b types.Buffer) (types.Buffer, error) {
	return createTyped(s, types.KindBuffer, b)
}

func CreateBufferView(s *Scene, bv types.BufferView) (types.BufferView, error) {
	return createTyped(s, types.KindBufferView, bv)
}

func CreateMaterial(s *Scene, m types.Material) (types.Material, error) {
	return createTyped(s, types.KindMaterial, m)
}

func CreateImage(s *Scene, img types.Image) (types.Image, error) {
	return createTyped(s, types.KindImage, img)
}

func CreateTexture(s *Scene, t types.Texture) (types.Texture, error) {
	return createTyped(s, types.KindTexture, t)
}

func CreateSampler(s *Scene, smp types.Sampler) (types.Sampler, error) {
	return createTyped(s, types.KindSampler, smp)
}

func CreateLight(s *Scene, l types.Light) (types.Light, error) {
	return createTyped(s, types.KindLight, l)
}

func CreateGeometry(s *Scene, g types.Geometry) (types.Geometry, error) {
	return createTyped(s, types.KindGeometry, g)
}

func CreateTable(s *Scene, tbl types.Table) (types.Table, error) {
	return createTyped(s, types.KindTable, tbl)
}

func createTyped[T any](s *Scene, kind types.Kind, value T) (T, error) {
	var zero T
	stored, err := s.create(kind, value)
	if err != nil {
		return zero, err
	}
	base, ok := extractBase(kind, stored)
	if !ok {
		return zero, &types.TypeError{Msg: "stored component lost its base type"}
	}
	return base.(T), nil
}
