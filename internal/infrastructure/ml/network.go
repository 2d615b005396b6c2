package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"fraud-risk-engine/internal/domain/fraud"
)

// probability clip used by the loss so log never sees 0
const lossEpsilon = 1e-7

// LayerSpec describes one hidden layer
type LayerSpec struct {
	Units   int
	Dropout float64
}

// DefaultArchitecture is 64 -> 32 -> 16 ReLU units with dropout on the two wider layers
var DefaultArchitecture = []LayerSpec{
	{Units: 64, Dropout: 0.3},
	{Units: 32, Dropout: 0.2},
	{Units: 16},
}

// layer is a dense layer. Weights are fanIn x fanOut, bias is 1 x fanOut.
// After training a layer is only read.
type layer struct {
	weights *mat.Dense
	bias    *mat.Dense
	dropout float64
	output  bool // sigmoid instead of ReLU
}

// Network is a feed-forward binary classifier over feature vectors
type Network struct {
	layers []*layer
}

// NewNetwork builds an untrained network using He initialization for ReLU
// layers and a single sigmoid output unit
func NewNetwork(hidden []LayerSpec, rng *rand.Rand) *Network {
	n := &Network{}
	fanIn := fraud.FeatureCount
	for _, h := range hidden {
		n.layers = append(n.layers, newLayer(fanIn, h.Units, math.Sqrt(2/float64(fanIn)), h.Dropout, false, rng))
		fanIn = h.Units
	}
	n.layers = append(n.layers, newLayer(fanIn, 1, math.Sqrt(1/float64(fanIn)), 0, true, rng))
	return n
}

func newLayer(fanIn, fanOut int, std, dropout float64, output bool, rng *rand.Rand) *layer {
	w := make([]float64, fanIn*fanOut)
	for i := range w {
		w[i] = rng.NormFloat64() * std
	}
	return &layer{
		weights: mat.NewDense(fanIn, fanOut, w),
		bias:    mat.NewDense(1, fanOut, nil),
		dropout: dropout,
		output:  output,
	}
}

// Predict returns the fraud probability for one vector.
// It allocates its own buffers and never writes to the network.
func (n *Network) Predict(v fraud.FeatureVector) float64 {
	x := mat.NewDense(1, fraud.FeatureCount, v.Slice())
	out := n.forward(x)
	return out.At(0, 0)
}

// PredictBatch returns one probability per row of x
func (n *Network) PredictBatch(x *mat.Dense) []float64 {
	out := n.forward(x)
	rows, _ := out.Dims()
	probs := make([]float64, rows)
	for i := range probs {
		probs[i] = out.At(i, 0)
	}
	return probs
}

// forward runs inference with dropout disabled
func (n *Network) forward(x *mat.Dense) *mat.Dense {
	a := x
	for _, l := range n.layers {
		z := l.affine(a)
		l.activate(z)
		a = z
	}
	return a
}

func (l *layer) affine(a *mat.Dense) *mat.Dense {
	rows, _ := a.Dims()
	_, cols := l.weights.Dims()
	z := mat.NewDense(rows, cols, nil)
	z.Mul(a, l.weights)
	bias := l.bias.RawRowView(0)
	z.Apply(func(_, j int, v float64) float64 {
		return v + bias[j]
	}, z)
	return z
}

func (l *layer) activate(z *mat.Dense) {
	if l.output {
		z.Apply(func(_, _ int, v float64) float64 { return sigmoid(v) }, z)
		return
	}
	z.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z)
}

// pass holds the intermediate values of one training forward pass.
// Keeping them here instead of on the layers keeps inference free of state.
type pass struct {
	inputs []*mat.Dense // input to each layer
	pre    []*mat.Dense // pre-activation of each layer
	masks  []*mat.Dense // scaled dropout mask, nil when the layer has no dropout
	out    *mat.Dense
}

func (n *Network) forwardTrain(x *mat.Dense, rng *rand.Rand) *pass {
	p := &pass{}
	a := x
	for _, l := range n.layers {
		p.inputs = append(p.inputs, a)
		z := l.affine(a)
		p.pre = append(p.pre, mat.DenseCopyOf(z))
		l.activate(z)

		var mask *mat.Dense
		if l.dropout > 0 && !l.output {
			mask = dropoutMask(z, l.dropout, rng)
			z.MulElem(z, mask)
		}
		p.masks = append(p.masks, mask)
		a = z
	}
	p.out = a
	return p
}

// dropoutMask draws an inverted dropout mask: kept units are scaled by 1/(1-rate)
func dropoutMask(like *mat.Dense, rate float64, rng *rand.Rand) *mat.Dense {
	rows, cols := like.Dims()
	keep := 1 - rate
	data := make([]float64, rows*cols)
	for i := range data {
		if rng.Float64() < keep {
			data[i] = 1 / keep
		}
	}
	return mat.NewDense(rows, cols, data)
}

// gradients mirrors the layer list
type gradients struct {
	weights []*mat.Dense
	bias    []*mat.Dense
}

// backward computes mean binary cross-entropy gradients for one batch
func (n *Network) backward(p *pass, y *mat.Dense) *gradients {
	rows, _ := y.Dims()
	g := &gradients{
		weights: make([]*mat.Dense, len(n.layers)),
		bias:    make([]*mat.Dense, len(n.layers)),
	}

	// sigmoid followed by cross-entropy gives (p - y) / batch at the output
	delta := mat.NewDense(rows, 1, nil)
	delta.Sub(p.out, y)
	delta.Scale(1/float64(rows), delta)

	for i := len(n.layers) - 1; i >= 0; i-- {
		l := n.layers[i]
		fanIn, fanOut := l.weights.Dims()

		gw := mat.NewDense(fanIn, fanOut, nil)
		gw.Mul(p.inputs[i].T(), delta)
		g.weights[i] = gw

		gb := mat.NewDense(1, fanOut, nil)
		for j := 0; j < fanOut; j++ {
			gb.Set(0, j, mat.Sum(delta.ColView(j)))
		}
		g.bias[i] = gb

		if i == 0 {
			break
		}

		// propagate into the previous layer's post-dropout activation
		upstream := mat.NewDense(rows, fanIn, nil)
		upstream.Mul(delta, l.weights.T())
		if mask := p.masks[i-1]; mask != nil {
			upstream.MulElem(upstream, mask)
		}
		pre := p.pre[i-1]
		upstream.Apply(func(r, c int, v float64) float64 {
			if pre.At(r, c) > 0 {
				return v
			}
			return 0
		}, upstream)
		delta = upstream
	}
	return g
}

// adam keeps first and second moment estimates for every parameter
type adam struct {
	lr, beta1, beta2, eps float64
	step                  int
	mw, vw, mb, vb        []*mat.Dense
}

func newAdam(n *Network, lr float64) *adam {
	opt := &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8}
	for _, l := range n.layers {
		r, c := l.weights.Dims()
		opt.mw = append(opt.mw, mat.NewDense(r, c, nil))
		opt.vw = append(opt.vw, mat.NewDense(r, c, nil))
		_, bc := l.bias.Dims()
		opt.mb = append(opt.mb, mat.NewDense(1, bc, nil))
		opt.vb = append(opt.vb, mat.NewDense(1, bc, nil))
	}
	return opt
}

func (o *adam) apply(n *Network, g *gradients) {
	o.step++
	c1 := 1 - math.Pow(o.beta1, float64(o.step))
	c2 := 1 - math.Pow(o.beta2, float64(o.step))
	for i, l := range n.layers {
		o.update(l.weights, g.weights[i], o.mw[i], o.vw[i], c1, c2)
		o.update(l.bias, g.bias[i], o.mb[i], o.vb[i], c1, c2)
	}
}

func (o *adam) update(param, grad, m, v *mat.Dense, c1, c2 float64) {
	p := param.RawMatrix().Data
	gd := grad.RawMatrix().Data
	md := m.RawMatrix().Data
	vd := v.RawMatrix().Data
	for i := range p {
		md[i] = o.beta1*md[i] + (1-o.beta1)*gd[i]
		vd[i] = o.beta2*vd[i] + (1-o.beta2)*gd[i]*gd[i]
		mHat := md[i] / c1
		vHat := vd[i] / c2
		p[i] -= o.lr * mHat / (math.Sqrt(vHat) + o.eps)
	}
}

// evaluate returns mean cross-entropy loss and accuracy at a 0.5 cutoff
func (n *Network) evaluate(ds *Dataset) (loss, accuracy float64) {
	if ds.Len() == 0 {
		return 0, 0
	}
	rows := make([]int, ds.Len())
	for i := range rows {
		rows[i] = i
	}
	x, _ := ds.Matrix(rows)
	probs := n.PredictBatch(x)

	correct := 0
	for i, p := range probs {
		y := ds.Labels[i]
		loss += crossEntropy(p, y)
		if (p >= 0.5) == (y >= 0.5) {
			correct++
		}
	}
	return loss / float64(len(probs)), float64(correct) / float64(len(probs))
}

func crossEntropy(p, y float64) float64 {
	p = math.Min(math.Max(p, lossEpsilon), 1-lossEpsilon)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
