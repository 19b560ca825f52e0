package services

import (
	"sort"
	"strings"

	"catalog/models"
	"catalog/utils"
)

const minNameSimilarity = 0.4

// RankProducts là đường dự phòng khi không có Elasticsearch: chấm điểm tên sản phẩm
// theo độ giống với từ khóa (đã bỏ dấu) và giữ những sản phẩm đủ gần
func RankProducts(query string, products []models.Product) []models.Product {
	q := utils.NormalizeInput(query)
	if q == "" {
		return products
	}

	names := make([]string, 0, len(products))
	byName := make(map[string][]int, len(products))
	for i, p := range products {
		n := utils.NormalizeInput(p.Name)
		if _, ok := byName[n]; !ok {
			names = append(names, n)
		}
		byName[n] = append(byName[n], i)
	}

	// closestmatch gợi ý vài tên gần nhất kể cả khi gõ sai chính tả
	suggested := map[string]bool{}
	if len(names) > 0 {
		for _, n := range utils.NewMatcher(names).ClosestN(q, 3) {
			suggested[n] = true
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for _, n := range names {
		score := nameScore(q, n)
		if suggested[n] && score >= minNameSimilarity/2 && score < minNameSimilarity {
			score = minNameSimilarity
		}
		if score < minNameSimilarity {
			continue
		}
		for _, idx := range byName[n] {
			hits = append(hits, scored{idx: idx, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return products[hits[i].idx].SoldCount > products[hits[j].idx].SoldCount
	})

	out := make([]models.Product, 0, len(hits))
	for _, h := range hits {
		out = append(out, products[h.idx])
	}
	return out
}

// nameScore: chứa nguyên từ khóa được điểm tối đa, còn lại lấy độ giống cao nhất theo từng từ
func nameScore(query, name string) float64 {
	if strings.Contains(name, query) {
		return 1
	}
	best := utils.Similarity(query, name)
	for _, word := range strings.Fields(name) {
		if s := utils.Similarity(query, word); s > best {
			best = s
		}
	}
	return best
}
