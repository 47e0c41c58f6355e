package ingestion

import (
	"context"
	"fmt"
	"sync"
)

// embeddingBatchSize is the number of texts sent to the embedder per pool task.
const embeddingBatchSize = 32

// embedAll embeds texts on the worker pool in batches and returns the vectors
// in input order. The first failing batch cancels the rest.
func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := min(start+embeddingBatchSize, len(texts))
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		err := p.embeddingPool.Submit(func() {
			defer wg.Done()
			p.logger.Debug("embedding batch", "start", start, "end", end)

			batch, err := p.embedder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				fail(fmt.Errorf("embedding notes[%d:%d]: %w", start, end, err))
				return
			}
			if len(batch) != end-start {
				fail(fmt.Errorf("embedding result mismatch. expected %d, received %d", end-start, len(batch)))
				return
			}
			copy(vectors[start:end], batch)
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		p.logger.Error("error generating embeddings", "err", firstErr)
		return nil, firstErr
	}
	return vectors, nil
}
