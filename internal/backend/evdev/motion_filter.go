package evdev

// MotionFilter は相対移動量 (dx, dy) を滑らかにする
type MotionFilter struct {
	smoothingFactor float64 // 0.0-1.0の範囲。1.0に近いほど滑らかになるが、遅延が大きくなる
	lastDX          float64
	lastDY          float64
	warmUpCount     int
	currentCount    int
	initialized     bool
}

// NewMotionFilter は新しいモーションフィルターを作成する
func NewMotionFilter(smoothingFactor float64, warmUpCount int) *MotionFilter {
	return &MotionFilter{
		smoothingFactor: smoothingFactor,
		warmUpCount:     warmUpCount,
	}
}

// Filter は生の dx, dy に平滑化を適用する。
// ウォームアップ中は値をそのまま返す。
func (mf *MotionFilter) Filter(dxRaw, dyRaw int32) (int32, int32) {
	if !mf.initialized || mf.currentCount < mf.warmUpCount {
		mf.currentCount++
		mf.lastDX = float64(dxRaw)
		mf.lastDY = float64(dyRaw)
		mf.initialized = true
		return dxRaw, dyRaw
	}

	f := mf.smoothingFactor
	newDX := float64(dxRaw)*(1.0-f) + mf.lastDX*f
	newDY := float64(dyRaw)*(1.0-f) + mf.lastDY*f

	mf.lastDX = newDX
	mf.lastDY = newDY

	return round(newDX), round(newDY)
}

// Reset はフィルターの状態を初期化する
func (mf *MotionFilter) Reset() {
	mf.lastDX = 0
	mf.lastDY = 0
	mf.currentCount = 0
	mf.initialized = false
}

// SetParams は係数を変更する。変更された場合は状態も初期化する。
func (mf *MotionFilter) SetParams(smoothingFactor float64, warmUpCount int) {
	if mf.smoothingFactor == smoothingFactor && mf.warmUpCount == warmUpCount {
		return
	}
	mf.smoothingFactor = smoothingFactor
	mf.warmUpCount = warmUpCount
	mf.Reset()
}

// round は 0 から遠い方向に四捨五入する（負の移動量でも対称になる）
func round(v float64) int32 {
	if v < 0 {
		return int32(v - 0.5)
	}
	return int32(v + 0.5)
}
