package chunker

// Chunker 文本分块接口
type Chunker interface {
	// Chunk 将文本分块，永不失败，空文本返回空切片
	Chunk(text string) []*TextChunk

	// ChunkSize 返回分块大小（字符数）
	ChunkSize() int

	// ChunkOverlap 返回分块重叠大小（字符数）
	ChunkOverlap() int
}

// TextChunk 文本分块
type TextChunk struct {
	Index   int    // 块序号（从 0 开始）
	Content string // 块内容（已去除首尾空白）
}

// Config 分块配置
type Config struct {
	Size       int      `mapstructure:"chunk_size"`    // 窗口大小（字符）
	Overlap    int      `mapstructure:"chunk_overlap"` // 重叠大小（字符）
	Separators []string `mapstructure:"separators"`    // 分隔符（按优先级），为空使用默认值
}

// DefaultConfig 默认分块配置
func DefaultConfig() *Config {
	return &Config{Size: 800, Overlap: 100}
}
