package analyze

import (
	"math"
	"time"

	"github.com/ignacioe7/tripscan/internal/model"
)

// AggregateAttraction summarizes one attraction from its reviews and their
// sentiment results.
func AggregateAttraction(a model.Attraction, reviews []model.ReviewData, now time.Time) model.AttractionAggregate {
	agg := model.AttractionAggregate{
		AttractionID: a.ID,
		RegionID:     a.RegionID,
		ReviewCount:  len(reviews),
		ComputedAt:   now,
	}

	var ratingSum float64
	var ratedCount int
	var scoreSum float64
	counts := make(map[model.Label]int)

	for _, rd := range reviews {
		if rd.Review.Rating > 0 {
			ratingSum += float64(rd.Review.Rating)
			ratedCount++
		}
		if rd.Sentiment != nil {
			agg.ClassifiedCount++
			scoreSum += rd.Sentiment.Score
			counts[rd.Sentiment.Label]++
		}
	}

	if ratedCount > 0 {
		agg.MeanRating = round2(ratingSum / float64(ratedCount))
	}
	if agg.ClassifiedCount > 0 {
		agg.MeanScore = round2(scoreSum / float64(agg.ClassifiedCount))
		agg.Distribution = distribution(counts, agg.ClassifiedCount)
		agg.DominantLabel = dominant(counts)
	}
	return agg
}

// AggregateRegion summarizes a region across its attractions. Means and the
// class distribution are computed over every classified review in the region,
// not by averaging per-attraction figures, so attractions with more reviews
// weigh more.
func AggregateRegion(regionID string, attractions []model.AttractionData, now time.Time) model.RegionAggregate {
	agg := model.RegionAggregate{
		RegionID:   regionID,
		Languages:  make(map[string]int),
		ComputedAt: now,
	}

	var ratingSum float64
	var ratedCount int
	var scoreSum float64
	counts := make(map[model.Label]int)

	for _, ad := range attractions {
		if len(ad.Reviews) == 0 {
			continue
		}
		agg.AttractionCount++
		agg.ReviewCount += len(ad.Reviews)

		for _, rd := range ad.Reviews {
			lang := rd.Review.Language
			if lang == "" {
				lang = "und"
			}
			agg.Languages[lang]++

			if rd.Review.Rating > 0 {
				ratingSum += float64(rd.Review.Rating)
				ratedCount++
			}
			if rd.Sentiment != nil {
				agg.ClassifiedCount++
				scoreSum += rd.Sentiment.Score
				counts[rd.Sentiment.Label]++
			}
		}
	}

	if ratedCount > 0 {
		agg.MeanRating = round2(ratingSum / float64(ratedCount))
	}
	if agg.ClassifiedCount > 0 {
		agg.MeanScore = round2(scoreSum / float64(agg.ClassifiedCount))
		agg.Distribution = distribution(counts, agg.ClassifiedCount)
		agg.DominantLabel = dominant(counts)
	}
	return agg
}

// AggregateDataset computes the full aggregate snapshot for a dataset.
// Output order follows the dataset's own (sorted) order.
func AggregateDataset(ds *model.Dataset, now time.Time) ([]model.RegionAggregate, []model.AttractionAggregate) {
	var regionAggs []model.RegionAggregate
	var attractionAggs []model.AttractionAggregate

	for _, rd := range ds.Regions {
		for _, ad := range rd.Attractions {
			attractionAggs = append(attractionAggs, AggregateAttraction(ad.Attraction, ad.Reviews, now))
		}
		regionAggs = append(regionAggs, AggregateRegion(rd.Region.ID, rd.Attractions, now))
	}
	return regionAggs, attractionAggs
}

// distribution converts class counts to percentages over classified reviews,
// rounded to one decimal. Iteration follows the fixed label order.
func distribution(counts map[model.Label]int, classified int) model.Distribution {
	var d model.Distribution
	for _, l := range model.Labels() {
		pct := 100 * float64(counts[l]) / float64(classified)
		d.SetShare(l, round1(pct))
	}
	return d
}

// dominant picks the class with the largest count. Ties resolve to the more
// positive class.
func dominant(counts map[model.Label]int) model.Label {
	best := model.LabelUnclassified
	bestCount := 0
	for _, l := range model.Labels() {
		if counts[l] >= bestCount && counts[l] > 0 {
			best = l
			bestCount = counts[l]
		}
	}
	return best
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
