package kclust_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/kclust"
	"github.com/hupe1980/kclust/model"
)

func Example() {
	m, _ := model.NewFeatureMatrix([][]float32{
		{0, 0}, {0, 1}, {1, 0}, {1, 1},
		{10, 10}, {10, 11}, {11, 10}, {11, 11},
	})
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}

	tr, err := kclust.New(kclust.Config{K: 2, NTries: 2, NIter: 5, Seed: 1})
	if err != nil {
		panic(err)
	}

	mdl, err := tr.Fit(context.Background(), m, labels)
	if err != nil {
		panic(err)
	}

	fmt.Printf("inertia=%.2f purity=%.2f\n", mdl.Inertia(), mdl.Consensus().Purity())
	// Output: inertia=0.25 purity=1.00
}
