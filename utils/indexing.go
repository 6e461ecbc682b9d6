package utils

type Index []int
