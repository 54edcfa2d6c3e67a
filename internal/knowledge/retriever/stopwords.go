package retriever

// defaultStopWords 中文提问中常见但不区分内容的词
var defaultStopWords = []string{
	"的", "了", "是", "在", "我", "你", "他", "她", "它",
	"分析", "文件", "请", "如何", "什么", "这个", "那个", "根据", "文档", "回答", "问题",
	"并", "和", "或", "等", "以", "从", "中", "于", "对", "为", "所", "其", "则", "将", "与",
	"关于", "有", "也", "都", "还", "是什么", "地", "得",
}

// StopWords 停用词集合
type StopWords map[string]struct{}

// DefaultStopWords 返回默认停用词集合的副本
func DefaultStopWords() StopWords {
	return NewStopWords(defaultStopWords...)
}

// NewStopWords 由词列表构建停用词集合
func NewStopWords(words ...string) StopWords {
	sw := make(StopWords, len(words))
	for _, w := range words {
		sw[w] = struct{}{}
	}
	return sw
}

// Contains 是否为停用词
func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}
