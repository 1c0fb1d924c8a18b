// Package input は入力デバイス（キーボード、ポインター、マルチタッチ）から届くイベントを
// バックエンドに依存しない形で表現し、ひとつのアプリケーションへ配送するための中核部分です。
//
// バックエンドはデバイスの読み取り方法を隠蔽し、Seat と各イベントの組を Handler の
// コールバックとして同期的に呼び出します。スレッドは持たず、呼び出し側が
// DispatchNewEvents を繰り返し呼ぶことで処理が進みます。
package input
