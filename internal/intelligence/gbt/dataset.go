package gbt

import (
	"fmt"
	"math"
	"sort"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// dataset is a validated training matrix with labels mapped to class indices.
type dataset struct {
	x         [][]float64
	yIdx      []int
	classes   []int
	nFeatures int
}

func (d *dataset) n() int { return len(d.x) }

// newDataset checks the shape and content of a training set.  Every problem
// is reported as ErrCodeTrainingFailure.
func newDataset(x [][]float64, y []int, minRows int) (*dataset, error) {
	if len(x) == 0 {
		return nil, trainingFailure("training set is empty")
	}
	if len(x) != len(y) {
		return nil, trainingFailure(fmt.Sprintf("%d rows but %d labels", len(x), len(y)))
	}
	if len(x) < minRows {
		return nil, trainingFailure(fmt.Sprintf("%d rows is below the minimum of %d", len(x), minRows))
	}
	width := len(x[0])
	if width == 0 {
		return nil, trainingFailure("training set has no features")
	}
	for i, row := range x {
		if len(row) != width {
			return nil, trainingFailure(fmt.Sprintf("row %d has %d features, expected %d", i, len(row), width))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, trainingFailure(fmt.Sprintf("row %d feature %d is not finite", i, j))
			}
		}
	}

	set := make(map[int]struct{})
	for _, l := range y {
		set[l] = struct{}{}
	}
	if len(set) < 2 {
		return nil, trainingFailure(fmt.Sprintf("training labels hold a single class %v", y[0]))
	}
	classes := make([]int, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Ints(classes)
	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	yIdx := make([]int, len(y))
	for i, l := range y {
		yIdx[i] = index[l]
	}
	return &dataset{x: x, yIdx: yIdx, classes: classes, nFeatures: width}, nil
}

func trainingFailure(msg string) error {
	return errors.New(errors.ErrCodeTrainingFailure, msg)
}

//Personal.AI order the ending
