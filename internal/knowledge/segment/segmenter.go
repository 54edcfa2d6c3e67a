package segment

import (
	"fmt"
	"strings"

	"github.com/go-ego/gse"
)

// Segmenter 分词器，把一段文本切成有序的词元
type Segmenter interface {
	Segment(text string) []string
}

// Config 分词器配置
type Config struct {
	DictFiles []string `mapstructure:"dict_files"` // 为空时使用内置中文词典
	HMM       bool     `mapstructure:"hmm"`        // 是否启用 HMM 识别未登录词
}

// GSESegmenter 基于 gse 的中文分词器，词典加载后只读，可并发使用
type GSESegmenter struct {
	seg gse.Segmenter
	hmm bool
}

// NewGSESegmenter 加载词典并创建分词器
func NewGSESegmenter(cfg *Config) (*GSESegmenter, error) {
	if cfg == nil {
		cfg = &Config{HMM: true}
	}

	s := &GSESegmenter{hmm: cfg.HMM}

	var err error
	if len(cfg.DictFiles) == 0 {
		err = s.seg.LoadDictEmbed()
	} else {
		err = s.seg.LoadDict(cfg.DictFiles...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load segment dictionary: %w", err)
	}

	return s, nil
}

// Segment 分词，结果保留原文顺序
func (s *GSESegmenter) Segment(text string) []string {
	if text == "" {
		return nil
	}
	return s.seg.Cut(text, s.hmm)
}

// Func 把普通函数适配为 Segmenter
type Func func(text string) []string

// Segment 调用函数本身
func (f Func) Segment(text string) []string {
	return f(text)
}

// Whitespace 按空白切分的简单分词器，词典不可用时兜底
var Whitespace Segmenter = Func(strings.Fields)
