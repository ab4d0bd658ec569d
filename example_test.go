package wavop_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/wavop"
	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/solver"
	"github.com/hupe1980/wavop/vector"
	"github.com/hupe1980/wavop/wavelet"
)

func exampleSetup() (*model.Model, *geometry.Geometry, *geometry.Geometry, *vector.Vector) {
	m, err := model.Layered([]int{120, 100}, []float64{10, 10}, []float64{0, 0},
		[]float64{0, 500}, []float32{1.5, 2.5})
	if err != nil {
		log.Fatal(err)
	}
	src, err := geometry.New([][]float64{{400}, {800}}, [][]float64{{0}, {0}}, [][]float64{{20}, {20}}, 2, 1000, 2)
	if err != nil {
		log.Fatal(err)
	}
	xrec := make([]float64, 60)
	zrec := make([]float64, 60)
	for i := range xrec {
		xrec[i] = float64(i) * 20
		zrec[i] = 10
	}
	rec, err := geometry.New([][]float64{xrec}, [][]float64{make([]float64, 60)}, [][]float64{zrec}, 2, 1000, 2)
	if err != nil {
		log.Fatal(err)
	}
	w := wavelet.Ricker(1000, 2, 0.01)
	q, err := vector.New(src, [][]float32{w, append([]float32(nil), w...)})
	if err != nil {
		log.Fatal(err)
	}
	return m, src, rec, q
}

// Example_composition builds the full modeling operator from its factors.
func Example_composition() {
	m, src, rec, _ := exampleSetup()
	info := wavop.NewInfo(m, src)

	pr, err := wavop.NewProjection(info, rec)
	if err != nil {
		log.Fatal(err)
	}
	ps, err := wavop.NewProjection(info, src)
	if err != nil {
		log.Fatal(err)
	}
	f, err := wavop.NewModeling(m, info, solver.NewKinematic())
	if err != nil {
		log.Fatal(err)
	}

	full, err := wavop.Mul(pr, f, ps.Transpose())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(full.Kind(), full.Shape())
	fmt.Println(full.Adjoint().Kind(), full.Adjoint().Shape())
	// Output:
	// full-forward (60120, 1002)
	// full-adjoint (1002, 60120)
}

// Example_shots selects single shots from operators.
func Example_shots() {
	m, src, rec, q := exampleSetup()
	full, err := wavop.NewFullModeling(m, src, rec, solver.NewKinematic())
	if err != nil {
		log.Fatal(err)
	}
	j, err := wavop.NewJacobian(full, q)
	if err != nil {
		log.Fatal(err)
	}

	f1, err := wavop.Index(full, 1)
	if err != nil {
		log.Fatal(err)
	}
	j1, err := wavop.Index(j, 1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(wavop.NSrc(full), f1.Shape(), j1.Shape())

	_, err = wavop.Index(full, 2)
	fmt.Println(err)
	// Output:
	// 2 (30060, 501) (30060, 12000)
	// shot index 2 out of range [0, 2)
}

// Example_forward models data for every shot.
func Example_forward() {
	m, src, rec, q := exampleSetup()
	full, err := wavop.NewFullModeling(m, src, rec, solver.NewKinematic())
	if err != nil {
		log.Fatal(err)
	}
	d, err := full.Apply(context.Background(), q)
	if err != nil {
		log.Fatal(err)
	}
	dv := d.(*vector.Vector)
	fmt.Println(dv.NSrc(), dv.Len(), dv.Norm() > 0)
	// Output: 2 60120 true
}
