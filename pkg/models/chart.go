package models

// PlotKind はグラフの種類を表します。
type PlotKind string

const (
	PlotHistogram PlotKind = "histogram"
	PlotScatter   PlotKind = "scatter"
	PlotBar       PlotKind = "bar"
	PlotPie       PlotKind = "pie"
	PlotLine      PlotKind = "line"
	PlotBox       PlotKind = "box"
)

// PlotKinds はUIのセレクタに表示する順序で全種類を返します。
var PlotKinds = []PlotKind{PlotHistogram, PlotScatter, PlotBar, PlotPie, PlotLine, PlotBox}

var plotKindLabels = map[PlotKind]string{
	PlotHistogram: "Histogram",
	PlotScatter:   "Scatter Plot",
	PlotBar:       "Bar Chart",
	PlotPie:       "Pie Chart",
	PlotLine:      "Line Chart",
	PlotBox:       "Box Plot",
}

// Valid reports whether k is one of the supported plot kinds.
func (k PlotKind) Valid() bool {
	_, ok := plotKindLabels[k]
	return ok
}

// Label はセレクタ表示用のラベルです。
func (k PlotKind) Label() string {
	return plotKindLabels[k]
}

// NeedsTwoColumns reports whether the kind binds both an x and a y column.
func (k PlotKind) NeedsTwoColumns() bool {
	return k == PlotScatter || k == PlotBar || k == PlotLine
}

// ChartRequest はユーザーが選択したグラフ種類と列です。
type ChartRequest struct {
	Kind   PlotKind `json:"kind" form:"kind"`
	Column string   `json:"column" form:"column"`
	Y      string   `json:"y,omitempty" form:"y"` // 省略時はデータセットの2列目
}

// Point は散布図・棒グラフ・折れ線グラフの1点です。値は float64 または string です。
type Point struct {
	X interface{} `json:"x" yaml:"x"`
	Y interface{} `json:"y" yaml:"y"`
}

// Bin はヒストグラムの1区間 [Lower, Upper) です。最後の区間のみ上端を含みます。
type Bin struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Count int     `json:"count" yaml:"count"`
}

// Category はカテゴリ値とその出現回数です。
type Category struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// BoxStats は箱ひげ図の要約統計量です。
type BoxStats struct {
	Count        int       `json:"count" yaml:"count"`
	Min          float64   `json:"min" yaml:"min"`
	Q1           float64   `json:"q1" yaml:"q1"`
	Median       float64   `json:"median" yaml:"median"`
	Q3           float64   `json:"q3" yaml:"q3"`
	Max          float64   `json:"max" yaml:"max"`
	LowerWhisker float64   `json:"lower_whisker" yaml:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker" yaml:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty" yaml:"outliers,omitempty"`
}

// ChartSpec はレンダラーに渡す抽象的なグラフ定義です。
// ゼロ値は「まだ何も選択されていない」状態を表します。
type ChartSpec struct {
	Kind       PlotKind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Title      string     `json:"title,omitempty" yaml:"title,omitempty"`
	DatasetID  string     `json:"dataset_id,omitempty" yaml:"dataset_id,omitempty"`
	X          string     `json:"x,omitempty" yaml:"x,omitempty"`
	Y          string     `json:"y,omitempty" yaml:"y,omitempty"`
	Names      string     `json:"names,omitempty" yaml:"names,omitempty"`
	XLabel     string     `json:"x_label,omitempty" yaml:"x_label,omitempty"`
	YLabel     string     `json:"y_label,omitempty" yaml:"y_label,omitempty"`
	Points     []Point    `json:"points,omitempty" yaml:"points,omitempty"`
	Bins       []Bin      `json:"bins,omitempty" yaml:"bins,omitempty"`
	Categories []Category `json:"categories,omitempty" yaml:"categories,omitempty"`
	Box        *BoxStats  `json:"box,omitempty" yaml:"box,omitempty"`
}

// IsEmpty reports whether s is the "nothing selected" value.
func (s ChartSpec) IsEmpty() bool {
	return s.Kind == ""
}

// Option はドロップダウンの選択肢です。
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
