// Package report generates batch similarity reports over a set of
// target trademarks.
package report

import (
	"context"
	"time"

	"github.com/wirkancil/markintel/internal/domain/similarity"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
	tmtypes "github.com/wirkancil/markintel/pkg/types/trademark"
)

// Analyzer runs one similarity analysis. Satisfied by the analysis
// service.
type Analyzer interface {
	Analyze(ctx context.Context, req tmtypes.AnalysisRequest) (*tmtypes.AnalysisResponse, error)
}

// Service turns per-target analyses into a bucketed report.
type Service struct {
	analyzer Analyzer
	logger   logging.Logger
}

func NewService(analyzer Analyzer, log logging.Logger) (*Service, error) {
	if analyzer == nil {
		return nil, errors.New(errors.ErrCodeValidation, "analyzer is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{analyzer: analyzer, logger: log.Named("report")}, nil
}

// Generate analyzes each target in order and summarizes the findings.
// A failed target becomes an error finding instead of failing the
// report, unless the context itself is done.
func (s *Service) Generate(ctx context.Context, req tmtypes.ReportRequest) (*tmtypes.ReportResponse, error) {
	if len(req.TargetTrademarks) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "target trademarks must not be empty")
	}
	if req.DateRange != nil {
		if err := req.DateRange.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid report date range")
		}
	}

	targets := req.TargetTrademarks
	if req.Options.MaxAnalyze > 0 && len(targets) > req.Options.MaxAnalyze {
		targets = targets[:req.Options.MaxAnalyze]
	}

	resp := &tmtypes.ReportResponse{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Period:        req.DateRange,
		TotalAnalyzed: len(targets),
		Findings:      make([]tmtypes.ReportFinding, 0, len(targets)),
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "report generation aborted")
		}

		analysis, err := s.analyzer.Analyze(ctx, tmtypes.AnalysisRequest{
			Trademark: target,
			Options: tmtypes.AnalysisOptions{
				TopK:      req.Options.TopK,
				DateRange: req.DateRange,
			},
		})
		if err != nil {
			s.logger.Warn("target analysis failed",
				logging.String("trademark", target),
				logging.Err(err))
			resp.Findings = append(resp.Findings, tmtypes.ReportFinding{
				TargetTrademark: target,
				Error:           err.Error(),
			})
			continue
		}

		finding := tmtypes.ReportFinding{
			TargetTrademark: target,
			MatchCount:      len(analysis.SimilarTrademarks),
		}
		if len(analysis.SimilarTrademarks) > 0 {
			best := analysis.SimilarTrademarks[0]
			finding.BestMatch = &best
			finding.Bucket = best.Bucket
			switch best.Bucket {
			case similarity.BucketHigh:
				resp.Summary.High++
			case similarity.BucketMedium:
				resp.Summary.Medium++
			default:
				resp.Summary.Low++
			}
		} else {
			resp.Summary.Low++
		}
		resp.Findings = append(resp.Findings, finding)
	}

	return resp, nil
}
