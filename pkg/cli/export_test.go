package cli

var (
	GetIndexConfig  = getIndexConfig
	DescribeIndexes = describeIndexes
)
