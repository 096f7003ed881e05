// Package emb wraps a local ONNX sentence-transformer model behind a small
// deterministic encoder: tokenize, run the model, mean-pool over the
// attention mask and L2-normalize. The same text always yields the same
// unit-length vector.
package emb

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config locates the runtime library, the exported model and its tokenizer.
type Config struct {
	OrtDLL        string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
}

// Encoder runs sentence embeddings through ONNX Runtime. Safe for concurrent
// use; inference itself is serialized per session.
type Encoder struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	maxLen  int
}

// Init prepares the ONNX environment, tokenizer and session.
func (e *Encoder) Init(cfg Config) error {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return errors.New("model and tokenizer paths are required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 512
	}
	if cfg.OrtDLL != "" {
		ort.SetSharedLibraryPath(cfg.OrtDLL)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}
	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	e.session = session
	e.tk = tk
	e.maxLen = cfg.MaxSeqLen
	return nil
}

// Close releases the ONNX session.
func (e *Encoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
}

// Encode embeds a single text into a unit-normalized float32 vector.
func (e *Encoder) Encode(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, errors.New("encoder is not initialized")
	}

	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids := enc.Ids
	mask := enc.AttentionMask
	if len(ids) == 0 {
		return nil, errors.New("empty token sequence")
	}
	ids, mask = truncate(ids, mask, e.maxLen)

	n := int64(len(ids))
	ids64 := make([]int64, len(ids))
	mask64 := make([]int64, len(mask))
	for i := range ids {
		ids64[i] = int64(ids[i])
		mask64[i] = int64(mask[i])
	}

	idsTensor, err := ort.NewTensor(ort.NewShape(1, n), ids64)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(ort.NewShape(1, n), mask64)
	if err != nil {
		return nil, fmt.Errorf("mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{idsTensor, maskTensor}, outputs); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}
	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.New("unexpected model output type")
	}
	defer hidden.Destroy()

	shape := hidden.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	seqLen := int(shape[1])
	dim := int(shape[2])
	return meanPool(hidden.GetData(), mask64, seqLen, dim), nil
}

// truncate caps an over-length token sequence at maxLen while keeping the
// trailing special token in place, matching sentence-transformers
// truncation.
func truncate(ids, mask []int, maxLen int) ([]int, []int) {
	if len(ids) <= maxLen || maxLen < 2 {
		return ids, mask
	}
	outIds := make([]int, maxLen)
	copy(outIds, ids[:maxLen-1])
	outIds[maxLen-1] = ids[len(ids)-1]
	outMask := make([]int, maxLen)
	copy(outMask, mask[:maxLen-1])
	outMask[maxLen-1] = mask[len(mask)-1]
	return outIds, outMask
}

// meanPool averages token states where the attention mask is set, then
// L2-normalizes, matching the sentence-transformers pooling of the source
// model.
func meanPool(data []float32, mask []int64, seqLen, dim int) []float32 {
	vec := make([]float64, dim)
	var count float64
	for t := 0; t < seqLen && t < len(mask); t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		off := t * dim
		for d := 0; d < dim; d++ {
			vec[d] += float64(data[off+d])
		}
	}
	if count == 0 {
		count = 1
	}
	var norm float64
	for d := range vec {
		vec[d] /= count
		norm += vec[d] * vec[d]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	out := make([]float32, dim)
	for d := range vec {
		out[d] = float32(vec[d] / norm)
	}
	return out
}
