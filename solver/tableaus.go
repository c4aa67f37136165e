package solver

import "math"

// The adaptive family's coefficient tables. Explicit pairs carry the
// embedded lower-order weights in BHat; the implicit Gauss methods
// estimate error from their fixed-point sweeps instead.

var tableauCK = Tableau{
	Name: "rkck",
	C:    []float64{0, 1. / 5., 3. / 10., 3. / 5., 1, 7. / 8.},
	A: [][]float64{
		{0, 0, 0, 0, 0, 0},
		{1. / 5., 0, 0, 0, 0, 0},
		{3. / 40., 9. / 40., 0, 0, 0, 0},
		{3. / 10., -9. / 10., 6. / 5., 0, 0, 0},
		{-11. / 54., 5. / 2., -70. / 27., 35. / 27., 0, 0},
		{1631. / 55296., 175. / 512., 575. / 13824., 44275. / 110592., 253. / 4096., 0},
	},
	B:    []float64{37. / 378., 0, 250. / 621., 125. / 594., 0, 512. / 1771.},
	BHat: []float64{2825. / 27648., 0, 18575. / 48384., 13525. / 55296., 277. / 14336., 1. / 4.},
}

var tableauDP = Tableau{
	Name: "rkdp",
	C:    []float64{0, 1. / 5., 3. / 10., 4. / 5., 8. / 9., 1, 1},
	A: [][]float64{
		{0, 0, 0, 0, 0, 0, 0},
		{1. / 5., 0, 0, 0, 0, 0, 0},
		{3. / 40., 9. / 40., 0, 0, 0, 0, 0},
		{44. / 45., -56. / 15., 32. / 9., 0, 0, 0, 0},
		{19372. / 6561., -25360. / 2187., 64448. / 6561., -212. / 729., 0, 0, 0},
		{9017. / 3168., -355. / 33., 46732. / 5247., 49. / 176., -5103. / 18656., 0, 0},
		{35. / 384., 0, 500. / 1113., 125. / 192., -2187. / 6784., 11. / 84., 0},
	},
	B:    []float64{35. / 384., 0, 500. / 1113., 125. / 192., -2187. / 6784., 11. / 84., 0},
	BHat: []float64{5179. / 57600., 0, 7571. / 16695., 393. / 640., -92097. / 339200., 187. / 2100., 1. / 40.},
}

var tableauF = Tableau{
	Name: "rkf",
	C:    []float64{0, 1. / 4., 3. / 8., 12. / 13., 1, 1. / 2.},
	A: [][]float64{
		{0, 0, 0, 0, 0, 0},
		{1. / 4., 0, 0, 0, 0, 0},
		{3. / 32., 9. / 32., 0, 0, 0, 0},
		{1932. / 2197., -7200. / 2197., 7296. / 2197., 0, 0, 0},
		{439. / 216., -8, 3680. / 513., -845. / 4104., 0, 0},
		{-8. / 27., 2, -3544. / 2565., 1859. / 4104., -11. / 40., 0},
	},
	B:    []float64{16. / 135., 0, 6656. / 12825., 28561. / 56430., -9. / 50., 2. / 55.},
	BHat: []float64{25. / 216., 0, 1408. / 2565., 2197. / 4104., -1. / 5., 0},
}

var sqrt3 = math.Sqrt(3)

var tableauGL = Tableau{
	Name: "rkgl",
	C:    []float64{1./2. - sqrt3/6, 1./2. + sqrt3/6},
	A: [][]float64{
		{1. / 4., 1./4. - sqrt3/6},
		{1./4. + sqrt3/6, 1. / 4.},
	},
	B:        []float64{1. / 2., 1. / 2.},
	Implicit: true,
}

var tableauLC = Tableau{
	Name: "rklc",
	C:    []float64{0, 1. / 2., 1},
	A: [][]float64{
		{1. / 6., -1. / 3., 1. / 6.},
		{1. / 6., 5. / 12., -1. / 12.},
		{1. / 6., 2. / 3., 1. / 6.},
	},
	B:        []float64{1. / 6., 2. / 3., 1. / 6.},
	Implicit: true,
}
