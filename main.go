package main

import (
	"flag"
	"time"

	log "github.com/golang/glog"

	"github.com/vishalbelsare/trlda/corpus"
	"github.com/vishalbelsare/trlda/model"
)

var (
	input     = flag.String("input_file", "", "input training file")
	topicNum  = flag.Int("k", 20, "number of topics")
	alpha     = flag.Float64("alpha", 0.1, "document-topic mixture hyperparameter")
	eta       = flag.Float64("eta", 0.01, "topic-word mixture hyperparameter")
	numDocs   = flag.Int("num_docs", 0, "number of documents in the whole corpus, 0 for the input size")
	batchSize = flag.Int("batch_size", 100, "number of documents per mini-batch")
	passes    = flag.Int("passes", 1, "number of passes over the input")
	seed      = flag.Uint64("seed", 0, "random seed, 0 to seed from the clock")

	method           = flag.String("method", "vi", "local inference method, vi or gibbs")
	rho              = flag.Float64("rho", -1, "fixed learning rate, negative to use a schedule")
	tau              = flag.Float64("tau", 1024, "learning rate schedule offset")
	kappa            = flag.Float64("kappa", .9, "learning rate schedule decay")
	adaptive         = flag.Bool("adaptive", false, "use the adaptive learning rate")
	maxIterMD        = flag.Int("max_iter_md", 0, "mirror descent iterations per batch")
	maxIterInference = flag.Int("max_iter_inference", 100, "variational iterations per document")
	threshold        = flag.Float64("threshold", 0.001, "variational convergence threshold")
	samples          = flag.Int("samples", 2, "kept Gibbs sweeps per document")
	burnIn           = flag.Int("burn_in", 2, "discarded Gibbs sweeps per document")
	workers          = flag.Int("workers", 0, "inference goroutines, 0 for GOMAXPROCS")

	initState = flag.String("init_state", "", "resume training from this model state")
	stateOut  = flag.String("state_out", "", "write the model state to this file")
	lambdaOut = flag.String("lambda_out", "", "write the topic-word parameters to this file")
)

func config() (*model.Config, error) {
	m, err := model.ParseMethod(*method)
	if err != nil {
		return nil, err
	}
	c := model.DefaultConfig()
	c.Method = m
	c.Rho = *rho
	c.Adaptive = *adaptive
	c.MaxIterMD = *maxIterMD
	c.MaxIterInference = *maxIterInference
	c.Threshold = *threshold
	c.NumSamples = *samples
	c.BurnIn = *burnIn
	c.NumWorkers = *workers
	return c, c.Validate()
}

func newModel(data *corpus.Corpus) (*model.OnlineLDA, error) {
	n := *numDocs
	if n <= 0 {
		n = len(data.Docs)
	}

	if *initState != "" {
		m, err := model.LoadState(*initState)
		if err != nil {
			return nil, err
		}
		log.Infof("resuming from %s after %d updates, tau %g, kappa %g",
			*initState, m.UpdateCounter(), m.Tau(), m.Kappa())
		if err := m.SetNumDocuments(n); err != nil {
			return nil, err
		}
		// a resumed model keeps its schedule unless asked otherwise
		return m, setSchedule(m, func(name string) bool { return explicit[name] })
	}

	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	m, err := model.NewOnlineLDAWithSeed(int(data.VocabSize), *topicNum, n, *alpha, *eta, s)
	if err != nil {
		return nil, err
	}
	return m, setSchedule(m, func(string) bool { return true })
}

// explicit holds the flags given on the command line
var explicit = map[string]bool{}

func setSchedule(m *model.OnlineLDA, use func(name string) bool) error {
	if use("tau") {
		if err := m.SetTau(*tau); err != nil {
			return err
		}
	}
	if use("kappa") {
		if err := m.SetKappa(*kappa); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()
	defer log.Flush()
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	c, err := config()
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	// read training data
	data := &corpus.Corpus{}
	if err := data.Load(*input); err != nil {
		log.Fatalf("loading %s: %v", *input, err)
	}

	m, err := newModel(data)
	if err != nil {
		log.Fatalf("creating model: %v", err)
	}

	batches := data.Batches(*batchSize)
	for pass := 0; pass < *passes; pass += 1 {
		for i, batch := range batches {
			start := time.Now()
			r, err := m.UpdateParameters(batch, c)
			if err != nil {
				log.Fatalf("pass %d, batch %d: %v", pass, i, err)
			}
			log.Infof("pass %3d, batch %5d, %d documents, rho %.6f, %v",
				pass, i, len(batch), r, time.Since(start))
		}
	}

	if *lambdaOut != "" {
		if err := m.SaveLambda(*lambdaOut); err != nil {
			log.Fatalf("saving lambda: %v", err)
		}
	}
	if *stateOut != "" {
		if err := m.SaveState(*stateOut); err != nil {
			log.Fatalf("saving state: %v", err)
		}
	}
}
