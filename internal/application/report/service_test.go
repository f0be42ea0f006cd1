package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/pkg/errors"
	commontypes "github.com/wirkancil/markintel/pkg/types/common"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

type fakeAnalyzer struct {
	responses map[string]*tmtypes.AnalysisResponse
	failures  map[string]error
	analyzed  []string
}

func (a *fakeAnalyzer) Analyze(_ context.Context, req tmtypes.AnalysisRequest) (*tmtypes.AnalysisResponse, error) {
	a.analyzed = append(a.analyzed, req.Trademark)
	if err, ok := a.failures[req.Trademark]; ok {
		return nil, err
	}
	if resp, ok := a.responses[req.Trademark]; ok {
		return resp, nil
	}
	return &tmtypes.AnalysisResponse{TargetTrademark: req.Trademark}, nil
}

func matchWithBucket(mark, bucket string, overall float64) tmtypes.SimilarityMatch {
	return tmtypes.SimilarityMatch{
		Record:  tmtypes.RecordView{MarkName: mark, ApplicationNumber: "1234567890", Class: "25"},
		Overall: &overall,
		Bucket:  bucket,
	}
}

func responseWith(target string, matches ...tmtypes.SimilarityMatch) *tmtypes.AnalysisResponse {
	return &tmtypes.AnalysisResponse{
		TargetTrademark:   target,
		TotalCompared:     100,
		SimilarTrademarks: matches,
	}
}

func TestGenerateSummarizesBuckets(t *testing.T) {
	analyzer := &fakeAnalyzer{responses: map[string]*tmtypes.AnalysisResponse{
		"SUPERCOLA": responseWith("SUPERCOLA",
			matchWithBucket("SUPERKOLA", similarity.BucketHigh, 0.92),
			matchWithBucket("SUPRACOLA", similarity.BucketMedium, 0.74)),
		"TOKOBAGUS": responseWith("TOKOBAGUS",
			matchWithBucket("TOKOBAGOES", similarity.BucketMedium, 0.71)),
		"KOPIKAP": responseWith("KOPIKAP"),
	}}
	svc, err := NewService(analyzer, nil)
	require.NoError(t, err)

	resp, err := svc.Generate(context.Background(), tmtypes.ReportRequest{
		TargetTrademarks: []string{"SUPERCOLA", "TOKOBAGUS", "KOPIKAP"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalAnalyzed)
	require.Len(t, resp.Findings, 3)

	first := resp.Findings[0]
	assert.Equal(t, "SUPERCOLA", first.TargetTrademark)
	assert.Equal(t, 2, first.MatchCount)
	require.NotNil(t, first.BestMatch)
	assert.Equal(t, "SUPERKOLA", first.BestMatch.Record.MarkName)
	assert.Equal(t, similarity.BucketHigh, first.Bucket)

	// KOPIKAP had no matches and counts as low.
	assert.Equal(t, 1, resp.Summary.High)
	assert.Equal(t, 1, resp.Summary.Medium)
	assert.Equal(t, 1, resp.Summary.Low)
	assert.NotEmpty(t, resp.GeneratedAt)
}

func TestGenerateFailedTargetBecomesErrorFinding(t *testing.T) {
	analyzer := &fakeAnalyzer{
		responses: map[string]*tmtypes.AnalysisResponse{
			"SUPERCOLA": responseWith("SUPERCOLA",
				matchWithBucket("SUPERKOLA", similarity.BucketHigh, 0.92)),
		},
		failures: map[string]error{
			"BROKEN": errors.New(errors.ErrCodeSimilaritySearchFailed, "vector search unavailable"),
		},
	}
	svc, err := NewService(analyzer, nil)
	require.NoError(t, err)

	resp, err := svc.Generate(context.Background(), tmtypes.ReportRequest{
		TargetTrademarks: []string{"BROKEN", "SUPERCOLA"},
	})
	require.NoError(t, err)

	require.Len(t, resp.Findings, 2)
	assert.Contains(t, resp.Findings[0].Error, "vector search unavailable")
	assert.Nil(t, resp.Findings[0].BestMatch)
	assert.Empty(t, resp.Findings[1].Error)
	assert.Equal(t, 1, resp.Summary.High)
}

func TestGenerateMaxAnalyzeTruncatesTargets(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	svc, err := NewService(analyzer, nil)
	require.NoError(t, err)

	resp, err := svc.Generate(context.Background(), tmtypes.ReportRequest{
		TargetTrademarks: []string{"A", "B", "C", "D"},
		Options:          tmtypes.ReportOptions{MaxAnalyze: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalAnalyzed)
	assert.Equal(t, []string{"A", "B"}, analyzer.analyzed)
}

func TestGenerateEmptyTargets(t *testing.T) {
	svc, err := NewService(&fakeAnalyzer{}, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), tmtypes.ReportRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestGenerateInvalidDateRange(t *testing.T) {
	svc, err := NewService(&fakeAnalyzer{}, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), tmtypes.ReportRequest{
		TargetTrademarks: []string{"SUPERCOLA"},
		DateRange:        &commontypes.DateRange{From: "2024-06-01", To: "2024-01-01"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestGenerateCancelledContext(t *testing.T) {
	svc, err := NewService(&fakeAnalyzer{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Generate(ctx, tmtypes.ReportRequest{TargetTrademarks: []string{"SUPERCOLA"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportFailed))
}
