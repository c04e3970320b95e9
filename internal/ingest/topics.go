package ingest

// BreakingTopic 该 topic 下的文章标记为突发新闻
const BreakingTopic = "breaking-news"

// FallbackCategorySlug 映射表中不存在的 topic 归入该分类
const FallbackCategorySlug = "india"

// DefaultTopics 每次抓取按此顺序遍历
var DefaultTopics = []string{
	BreakingTopic,
	"nation",
	"world",
	"technology",
	"business",
	"sports",
	"health",
}

// topic -> 本地分类 slug
var topicCategorySlugs = map[string]string{
	BreakingTopic: "breaking-news",
	"nation":      "india",
	"world":       "world",
	"technology":  "technology",
	"business":    "business",
	"sports":      "sports",
	"health":      "health",
}

// CategorySlugForTopic 返回 topic 对应的分类 slug，未知 topic 返回 FallbackCategorySlug
func CategorySlugForTopic(topic string) string {
	if slug, ok := topicCategorySlugs[topic]; ok {
		return slug
	}
	return FallbackCategorySlug
}

// ResolveCategoryID 在启用分类中查找 topic 对应的分类 id
// slug 不在 active 中时返回 nil，分类归属不影响入库
func ResolveCategoryID(topic string, active map[string]string) *string {
	id, ok := active[CategorySlugForTopic(topic)]
	if !ok {
		return nil
	}
	return &id
}
