package matcher

import (
	"math"
	"regexp"
	"strings"
)

// tokenRe 词元为连续的字母数字（外加+和#，保留c++/c#等技能名）
var tokenRe = regexp.MustCompile(`[a-z0-9+#]+`)

// stopwords 常见英文停用词，计算相似度前剔除
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true, "you": true, "your": true, "we": true, "our": true,
	"this": true, "their": true, "they": true,
}

// tokenize 将文本切分为小写词元并剔除停用词
func tokenize(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if !stopwords[t] && len(t) > 1 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// tfidfCorpus 一批文档的TF-IDF向量空间。
// 同一次搜索的简历与全部职位共享一个语料库，IDF因此在批内一致。
type tfidfCorpus struct {
	vectors []map[string]float64
}

// buildCorpus 对文档集合构建TF-IDF向量。
// IDF使用平滑公式 ln((N+1)/(df+1))+1，保证永远为正。
func buildCorpus(docs []string) *tfidfCorpus {
	n := len(docs)
	tokenized := make([][]string, n)
	df := make(map[string]int)

	for i, doc := range docs {
		tokens := tokenize(doc)
		tokenized[i] = tokens

		seen := make(map[string]bool)
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log(float64(n+1)/float64(count+1)) + 1
	}

	vectors := make([]map[string]float64, n)
	for i, tokens := range tokenized {
		vec := make(map[string]float64)
		if len(tokens) == 0 {
			vectors[i] = vec
			continue
		}

		counts := make(map[string]int)
		for _, t := range tokens {
			counts[t]++
		}
		total := float64(len(tokens))
		for term, c := range counts {
			vec[term] = float64(c) / total * idf[term]
		}
		vectors[i] = vec
	}

	return &tfidfCorpus{vectors: vectors}
}

// cosine 两个向量的余弦相似度，零向量相似度为0
func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// 遍历较小的向量
	if len(a) > len(b) {
		a, b = b, a
	}

	dot := 0.0
	for term, va := range a {
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	if dot == 0 {
		return 0
	}

	return dot / (norm(a) * norm(b))
}

func norm(v map[string]float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
